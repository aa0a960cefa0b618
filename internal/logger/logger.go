package logger

import (
    "io"
    "os"

    "github.com/sirupsen/logrus"
)

// New returns a text logger with full timestamps at the given level.  An
// unknown level name falls back to info.
func New(level string) *logrus.Logger {
    return NewWithOutput(level, os.Stdout)
}

// NewWithOutput is New writing to w.
func NewWithOutput(level string, w io.Writer) *logrus.Logger {
    l := logrus.New()
    l.SetOutput(w)
    l.SetFormatter(&logrus.TextFormatter{
        FullTimestamp: true,
    })
    lvl, err := logrus.ParseLevel(level)
    if err != nil {
        lvl = logrus.InfoLevel
    }
    l.SetLevel(lvl)
    return l
}

// Discard returns a logger that drops everything.  Used in tests.
func Discard() *logrus.Logger {
    l := logrus.New()
    l.SetOutput(io.Discard)
    return l
}
