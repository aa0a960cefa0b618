package model

import (
    "encoding/json"
    "testing"
    "time"

    "gopkg.in/guregu/null.v4"
)

func TestClientJSONNullFields(t *testing.T) {
    c := Client{ID: 7, Name: "John", Surname: "Doe"}
    b, err := json.Marshal(c)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    want := `{"id":7,"name":"John","surname":"Doe","credit_card":null,"car_number":null}`
    if string(b) != want {
        t.Errorf("expected %s, got %s", want, b)
    }
}

func TestClientCanPay(t *testing.T) {
    cases := []struct {
        name string
        card null.String
        want bool
    }{
        {"absent", null.String{}, false},
        {"empty", null.StringFrom(""), false},
        {"present", null.StringFrom("1234"), true},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            c := Client{CreditCard: tc.card}
            if got := c.CanPay(); got != tc.want {
                t.Errorf("expected %v, got %v", tc.want, got)
            }
        })
    }
}

func TestParkingHasFreePlace(t *testing.T) {
    if (&Parking{Opened: false, CountPlaces: 5, CountAvailablePlaces: 5}).HasFreePlace() {
        t.Error("closed lot must not admit")
    }
    if (&Parking{Opened: true, CountPlaces: 5, CountAvailablePlaces: 0}).HasFreePlace() {
        t.Error("full lot must not admit")
    }
    if !(&Parking{Opened: true, CountPlaces: 5, CountAvailablePlaces: 1}).HasFreePlace() {
        t.Error("open lot with a free place must admit")
    }
}

func TestClientParkingJSON(t *testing.T) {
    in := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
    s := ClientParking{ID: 1, ClientID: 2, ParkingID: 3, TimeIn: in}
    if !s.IsOpen() {
        t.Fatal("expected open session")
    }
    b, err := json.Marshal(s)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    want := `{"id":1,"client_id":2,"parking_id":3,"time_in":"2024-03-01T10:00:00Z","time_out":null}`
    if string(b) != want {
        t.Errorf("expected %s, got %s", want, b)
    }

    s.TimeOut = null.TimeFrom(in.Add(time.Hour))
    if s.IsOpen() {
        t.Error("expected closed session")
    }
}
