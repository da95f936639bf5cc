package errors

import (
	"github.com/rs/zerolog"

	"github.com/go-drift/mediakit/pkg/log"
)

// LogHandler is an ErrorHandler that logs errors through the global
// zerolog logger.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() zerolog.Logger {
	return log.WithComponent("errors")
}

// HandleError logs an Error.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	logger := h.logger()
	ev := logger.Error().
		Str("op", err.Op).
		Str("kind", err.Kind.String()).
		Err(err.Err)
	if err.Channel != "" {
		ev = ev.Str("channel", err.Channel)
	}
	if err.Player != 0 {
		ev = ev.Int64("player", err.Player)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("error reported")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	logger := h.logger()
	ev := logger.Error().
		Str("op", err.Op).
		Any("value", err.Value)
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("recovered panic")
}
