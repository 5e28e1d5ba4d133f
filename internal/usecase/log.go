package usecase

import (
	"io"
	"log/slog"
)

var discard = slog.New(slog.NewJSONHandler(io.Discard, nil))

// logged gives a use case an optional structured logger.
type logged struct {
	log *slog.Logger
}

// SetLogger routes the use case's events to l.
func (l *logged) SetLogger(log *slog.Logger) { l.log = log }

func (l *logged) logger() *slog.Logger {
	if l.log == nil {
		return discard
	}
	return l.log
}
