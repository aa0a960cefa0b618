package handler // handler defines http handlers

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/parking-registry/internal/model"
    "github.com/iliyamo/parking-registry/internal/validator"
)

// SessionService is implemented by service.SessionManager.
type SessionService interface {
    Admit(ctx context.Context, clientID, parkingID uint64) (*model.ClientParking, error)
    Release(ctx context.Context, clientID, parkingID uint64) (*model.ClientParking, error)
}

// SessionHandler serves /client_parkings.
type SessionHandler struct {
    Sessions SessionService
    Log      *logrus.Logger
}

// NewSessionHandler panics when a dependency is missing.
func NewSessionHandler(sessions SessionService, log *logrus.Logger) *SessionHandler {
    if sessions == nil || log == nil {
        panic("nil dependency passed to NewSessionHandler")
    }
    return &SessionHandler{Sessions: sessions, Log: log}
}

type sessionRequest struct {
    ClientID  *uint64 `json:"client_id"`
    ParkingID *uint64 `json:"parking_id"`
}

func (r *sessionRequest) validate() *validator.Validator {
    v := validator.New()
    if validator.Present(v, r.ClientID, "client_id") {
        v.Check(*r.ClientID > 0, "client_id", "must be a positive integer")
    }
    if validator.Present(v, r.ParkingID, "parking_id") {
        v.Check(*r.ParkingID > 0, "parking_id", "must be a positive integer")
    }
    return v
}

// Admit handles POST /client_parkings.
func (h *SessionHandler) Admit(c echo.Context) error {
    return h.handle(c, h.Sessions.Admit)
}

// Release handles DELETE /client_parkings.
func (h *SessionHandler) Release(c echo.Context) error {
    return h.handle(c, h.Sessions.Release)
}

func (h *SessionHandler) handle(c echo.Context, op func(context.Context, uint64, uint64) (*model.ClientParking, error)) error {
    var req sessionRequest
    if err := bindJSON(c, &req); err != nil {
        return badBody(c)
    }
    if v := req.validate(); !v.Valid() {
        return failedValidation(c, v)
    }
    s, err := op(c.Request().Context(), *req.ClientID, *req.ParkingID)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, s)
}
