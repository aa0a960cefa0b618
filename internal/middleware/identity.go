package middleware

import "github.com/labstack/echo/v4"

// Context keys set by AdminAuth.
const (
    ctxSubject = "subject"
    ctxRole    = "role"
)

// subject returns the authenticated token subject, or "anon" when the
// request carried no admin token.  It is only meaningful once the handler
// chain has run past AdminAuth.
func subject(c echo.Context) string {
    if s, ok := c.Get(ctxSubject).(string); ok && s != "" {
        return s
    }
    return "anon"
}
