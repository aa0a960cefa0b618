package handler // handler defines http handlers

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
    "gopkg.in/guregu/null.v4"

    "github.com/iliyamo/parking-registry/internal/model"
    "github.com/iliyamo/parking-registry/internal/repository"
    "github.com/iliyamo/parking-registry/internal/validator"
)

// ClientHandler serves /clients.
type ClientHandler struct {
    Clients repository.ClientStore
    Log     *logrus.Logger
}

// NewClientHandler panics when a dependency is missing.
func NewClientHandler(clients repository.ClientStore, log *logrus.Logger) *ClientHandler {
    if clients == nil || log == nil {
        panic("nil dependency passed to NewClientHandler")
    }
    return &ClientHandler{Clients: clients, Log: log}
}

// createClientRequest uses pointers so an absent field can be told apart
// from an empty one.
type createClientRequest struct {
    Name       *string `json:"name"`
    Surname    *string `json:"surname"`
    CreditCard *string `json:"credit_card"`
    CarNumber  *string `json:"car_number"`
}

func (r *createClientRequest) validate() *validator.Validator {
    v := validator.New()
    if validator.Present(v, r.Name, "name") {
        v.Check(validator.NotBlank(*r.Name), "name", "must not be blank")
        v.Check(validator.MaxLen(*r.Name, 50), "name", "must be at most 50 characters")
    }
    if validator.Present(v, r.Surname, "surname") {
        v.Check(validator.NotBlank(*r.Surname), "surname", "must not be blank")
        v.Check(validator.MaxLen(*r.Surname, 50), "surname", "must be at most 50 characters")
    }
    if validator.Present(v, r.CreditCard, "credit_card") {
        v.Check(validator.NotBlank(*r.CreditCard), "credit_card", "must not be empty")
        v.Check(validator.MaxLen(*r.CreditCard, 50), "credit_card", "must be at most 50 characters")
    }
    if validator.Present(v, r.CarNumber, "car_number") {
        v.Check(validator.MaxLen(*r.CarNumber, 10), "car_number", "must be at most 10 characters")
    }
    return v
}

// Create handles POST /clients.
func (h *ClientHandler) Create(c echo.Context) error {
    var req createClientRequest
    if err := bindJSON(c, &req); err != nil {
        return badBody(c)
    }
    if v := req.validate(); !v.Valid() {
        return failedValidation(c, v)
    }

    client := &model.Client{
        Name:       strings.TrimSpace(*req.Name),
        Surname:    strings.TrimSpace(*req.Surname),
        CreditCard: null.StringFrom(*req.CreditCard),
        CarNumber:  null.NewString(*req.CarNumber, *req.CarNumber != ""),
    }
    if err := h.Clients.Create(c.Request().Context(), client); err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, client)
}

// List handles GET /clients.
func (h *ClientHandler) List(c echo.Context) error {
    items, err := h.Clients.List(c.Request().Context())
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, items)
}

// Get handles GET /clients/:id.
func (h *ClientHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    client, err := h.Clients.GetByID(c.Request().Context(), id)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, client)
}
