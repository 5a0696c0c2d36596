package logger

import (
	"log"
	"log/slog"
)

// New returns a stdlib logger that forwards into base at error level,
// tagged with the component. It serves APIs that only accept *log.Logger,
// such as http.Server.ErrorLog.
func New(base *slog.Logger, component string) *log.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), slog.LevelError)
}
