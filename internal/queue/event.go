// Package queue defines message payloads exchanged over the message broker.
package queue

// ParkingEventsQueue is the durable queue carrying entry and exit events.
const ParkingEventsQueue = "parking.events"

// Event types carried in ParkingEvent.Type.
const (
    EventEntered = "parking.entered"
    EventExited  = "parking.exited"
)

// ParkingEvent is published after an admission or release commits.  It
// contains enough information for downstream consumers to log, bill or
// trigger analytics without querying the primary database.
type ParkingEvent struct {
    ID                   string  `json:"id"`
    Type                 string  `json:"type"`
    SessionID            uint64  `json:"session_id"`
    ClientID             uint64  `json:"client_id"`
    ParkingID            uint64  `json:"parking_id"`
    TimeIn               string  `json:"time_in"`
    TimeOut              *string `json:"time_out,omitempty"`
    CountAvailablePlaces int     `json:"count_available_places"`
    OccurredAt           string  `json:"occurred_at"`
}
