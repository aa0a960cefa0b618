package model

import "gopkg.in/guregu/null.v4"

// Client represents a driver registered with the facility.  Clients are
// created once and never updated through the API.  This struct
// corresponds to a row in the `clients` table.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – first name, never empty.
//  Surname    – last name, never empty.
//  CreditCard – payment card on file (nullable).  Release requires it.
//  CarNumber  – licence plate of the client's car (nullable).
type Client struct {
    ID         uint64      `json:"id"`          // clients.id
    Name       string      `json:"name"`        // clients.name
    Surname    string      `json:"surname"`     // clients.surname
    CreditCard null.String `json:"credit_card"` // clients.credit_card (nullable)
    CarNumber  null.String `json:"car_number"`  // clients.car_number (nullable)
}

// CanPay reports whether the client has a non-empty payment card.
func (c *Client) CanPay() bool {
    return c.CreditCard.ValueOrZero() != ""
}
