package model

import (
    "time"

    "gopkg.in/guregu/null.v4"
)

// ClientParking is a parking session linking one client to one lot.  At
// most one row exists per (client, parking) pair.  TimeIn is stamped on
// admission; TimeOut stays null until the session is released.
//
// Fields:
//  ID        – primary key identifier.
//  ClientID  – reference to clients.id.
//  ParkingID – reference to parking.id.
//  TimeIn    – admission timestamp (UTC).
//  TimeOut   – release timestamp (UTC, nullable), never before TimeIn.
type ClientParking struct {
    ID        uint64    `json:"id"`         // client_parking.id
    ClientID  uint64    `json:"client_id"`  // client_parking.client_id
    ParkingID uint64    `json:"parking_id"` // client_parking.parking_id
    TimeIn    time.Time `json:"time_in"`    // client_parking.time_in
    TimeOut   null.Time `json:"time_out"`   // client_parking.time_out (nullable)
}

// IsOpen reports whether the session has not been released yet.
func (s *ClientParking) IsOpen() bool {
    return !s.TimeOut.Valid
}
