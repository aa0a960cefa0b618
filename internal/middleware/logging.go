package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/sirupsen/logrus"
)

// RequestLogger writes one logrus entry per request, tagged with the admin
// subject when AdminAuth accepted a token.  5xx responses are logged at error
// level, everything else at info.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            entry := log.WithFields(logrus.Fields{
                "method":     v.Method,
                "uri":        v.URI,
                "status":     v.Status,
                "latency":    v.Latency.String(),
                "remote_ip":  v.RemoteIP,
                "request_id": v.RequestID,
                "subject":    subject(c),
            })
            if v.Error != nil {
                entry = entry.WithError(v.Error)
            }
            if v.Status >= 500 {
                entry.Error("request")
            } else {
                entry.Info("request")
            }
            return nil
        },
    })
}
