package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose token role is not one of roles with
// 403.  It must run after AdminAuth.  With enabled false it is a no-op so
// the pair can be mounted unconditionally.
func RequireRole(enabled bool, roles ...string) echo.MiddlewareFunc {
    if !enabled {
        return passthrough
    }
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, _ := c.Get(ctxRole).(string)
            if !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
