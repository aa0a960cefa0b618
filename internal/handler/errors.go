package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/parking-registry/internal/repository"
    "github.com/iliyamo/parking-registry/internal/service"
    "github.com/iliyamo/parking-registry/internal/validator"
)

// bindJSON decodes the JSON request body into dst.  Path and query
// parameters are ignored, which lets DELETE carry the same body as POST.
func bindJSON(c echo.Context, dst any) error {
    return new(echo.DefaultBinder).BindBody(c, dst)
}

// badBody answers a body that could not be decoded (wrong JSON type,
// malformed document, unsupported media type).
func badBody(c echo.Context) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
}

// failedValidation answers with every failing field.
func failedValidation(c echo.Context, v *validator.Validator) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": v.Errors})
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// respondError maps service and store errors to a status code.  Unknown
// errors are logged and hidden behind a generic 500.
func respondError(c echo.Context, log *logrus.Logger, err error) error {
    switch {
    case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrInvalidState):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrConflict), errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    }
    log.WithError(err).WithFields(logrus.Fields{
        "method": c.Request().Method,
        "uri":    c.Request().RequestURI,
    }).Error("request failed")
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
