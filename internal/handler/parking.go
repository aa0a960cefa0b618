package handler // handler defines http handlers

import (
    "math"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/parking-registry/internal/model"
    "github.com/iliyamo/parking-registry/internal/repository"
    "github.com/iliyamo/parking-registry/internal/validator"
)

// ParkingHandler serves /parkings.
type ParkingHandler struct {
    Parkings repository.ParkingStore
    Log      *logrus.Logger
}

// NewParkingHandler panics when a dependency is missing.
func NewParkingHandler(parkings repository.ParkingStore, log *logrus.Logger) *ParkingHandler {
    if parkings == nil || log == nil {
        panic("nil dependency passed to NewParkingHandler")
    }
    return &ParkingHandler{Parkings: parkings, Log: log}
}

type createParkingRequest struct {
    Address              *string `json:"address"`
    Opened               *bool   `json:"opened"`
    CountPlaces          *int    `json:"count_places"`
    CountAvailablePlaces *int    `json:"count_available_places"`
}

func (r *createParkingRequest) validate() *validator.Validator {
    v := validator.New()
    if validator.Present(v, r.Address, "address") {
        v.Check(validator.NotBlank(*r.Address), "address", "must not be blank")
        v.Check(validator.MaxLen(*r.Address, 100), "address", "must be at most 100 characters")
    }
    validator.Present(v, r.Opened, "opened")
    // counts are stored in signed INT columns
    total := validator.Present(v, r.CountPlaces, "count_places")
    if total {
        v.Check(*r.CountPlaces > 0, "count_places", "must be greater than zero")
        v.Check(*r.CountPlaces <= math.MaxInt32, "count_places", "must be at most 2147483647")
    }
    if validator.Present(v, r.CountAvailablePlaces, "count_available_places") {
        hi := math.MaxInt32
        if total && *r.CountPlaces < hi {
            hi = *r.CountPlaces
        }
        v.Check(validator.Between(*r.CountAvailablePlaces, 0, hi),
            "count_available_places", "must be between 0 and count_places")
    }
    return v
}

// Create handles POST /parkings.
func (h *ParkingHandler) Create(c echo.Context) error {
    var req createParkingRequest
    if err := bindJSON(c, &req); err != nil {
        return badBody(c)
    }
    if v := req.validate(); !v.Valid() {
        return failedValidation(c, v)
    }

    lot := &model.Parking{
        Address:              strings.TrimSpace(*req.Address),
        Opened:               *req.Opened,
        CountPlaces:          *req.CountPlaces,
        CountAvailablePlaces: *req.CountAvailablePlaces,
    }
    if err := h.Parkings.Create(c.Request().Context(), lot); err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, lot)
}

// List handles GET /parkings.
func (h *ParkingHandler) List(c echo.Context) error {
    items, err := h.Parkings.List(c.Request().Context())
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, items)
}

// Get handles GET /parkings/:id.
func (h *ParkingHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    lot, err := h.Parkings.GetByID(c.Request().Context(), id)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, lot)
}
