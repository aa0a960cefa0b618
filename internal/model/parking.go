package model

// Parking represents a parking lot.  CountPlaces is the fixed total
// capacity and CountAvailablePlaces the number of places that are not
// taken by an open session.  The available counter is only changed by
// admissions and releases, always inside the transaction that checks it.
//
// Fields:
//  ID                   – primary key identifier.
//  Address              – street address, never empty.
//  Opened               – whether the lot currently admits cars.
//  CountPlaces          – total capacity, greater than zero.
//  CountAvailablePlaces – free places, 0 <= value <= CountPlaces.
type Parking struct {
    ID                   uint64 `json:"id"`                     // parking.id
    Address              string `json:"address"`                // parking.address
    Opened               bool   `json:"opened"`                 // parking.opened
    CountPlaces          int    `json:"count_places"`           // parking.count_places
    CountAvailablePlaces int    `json:"count_available_places"` // parking.count_available_places
}

// HasFreePlace reports whether the lot can admit one more car.
func (p *Parking) HasFreePlace() bool {
    return p.Opened && p.CountAvailablePlaces > 0
}
