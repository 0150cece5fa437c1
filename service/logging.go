package service

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger is the logging sink used by the pipeline. *slog.Logger implements it.
type Logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// ContextHandler adds the request id set by middleware.RequestID to every
// record logged with a request context.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		r.AddAttrs(slog.String("request_id", reqID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// Observer receives pipeline side observations. It never influences outcomes.
type Observer interface {
	RecordAccepted(ctx context.Context, rec TelemetryRecord)
	Broadcasting(ctx context.Context, evt EnrichedEvent)
}

// LogObserver logs movement status and outgoing payloads.
type LogObserver struct {
	logger Logger
}

func NewLogObserver(l Logger) *LogObserver {
	return &LogObserver{logger: l}
}

func (o *LogObserver) RecordAccepted(ctx context.Context, rec TelemetryRecord) {
	msg := "tracker stationary"
	if rec.Moving() {
		msg = "tracker moving"
	}
	o.logger.InfoContext(ctx, msg,
		"tracker_ident", rec.Ident,
		"record", rec.Raw(),
	)
}

func (o *LogObserver) Broadcasting(ctx context.Context, evt EnrichedEvent) {
	o.logger.InfoContext(ctx, "broadcasting data", "event", evt)
}

type nopObserver struct{}

func (nopObserver) RecordAccepted(context.Context, TelemetryRecord) {}
func (nopObserver) Broadcasting(context.Context, EnrichedEvent)     {}
