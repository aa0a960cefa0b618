package handler // handler defines http handlers

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/parking-registry/internal/utils"
    "github.com/iliyamo/parking-registry/internal/validator"
)

// AdminHandler issues admin access tokens.  It is only routed when an
// admin JWT secret is configured.
type AdminHandler struct {
    User         string
    PasswordHash string
    Secret       string
    TTL          time.Duration
    Log          *logrus.Logger
}

type loginRequest struct {
    Username *string `json:"username"`
    Password *string `json:"password"`
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(c echo.Context) error {
    var req loginRequest
    if err := bindJSON(c, &req); err != nil {
        return badBody(c)
    }
    v := validator.New()
    validator.Present(v, req.Username, "username")
    validator.Present(v, req.Password, "password")
    if !v.Valid() {
        return failedValidation(c, v)
    }

    if *req.Username != h.User || !utils.VerifyPassword(h.PasswordHash, *req.Password) {
        h.Log.WithField("username", *req.Username).Warn("admin login rejected")
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    tok, err := utils.NewAccessToken(h.Secret, h.User, utils.RoleAdmin, h.TTL)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access_token": tok.Token,
        "token_type":   "Bearer",
        "expires_at":   tok.Exp.Format(time.RFC3339),
    })
}
