// Package logging builds the service's slog logger. Records written with a
// context carry the request, websocket session and workload request that
// produced them.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"
)

type contextKey string

// Context keys stamped onto every record logged with a context.
const (
	RequestIDKey contextKey = "request_id"
	SessionIDKey contextKey = "session_id"
	ControlKey   contextKey = "control"
	SeqKey       contextKey = "seq"
)

// stampedKeys is the output order of context attributes.
var stampedKeys = []contextKey{RequestIDKey, SessionIDKey, ControlKey, SeqKey}

// Config holds logger configuration
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, text
	Output      io.Writer
	AddSource   bool
	ServiceName string
	Environment string
}

// NewLogger creates the service logger. Every record carries the service
// name and environment; context values are added per record.
func NewLogger(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		AddSource:   cfg.AddSource,
		ReplaceAttr: formatTime,
	}

	var base slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		base = slog.NewTextHandler(output, opts)
	} else {
		base = slog.NewJSONHandler(output, opts)
	}

	var meta []slog.Attr
	if cfg.ServiceName != "" {
		meta = append(meta, slog.String("service", cfg.ServiceName))
	}
	if cfg.Environment != "" {
		meta = append(meta, slog.String("environment", cfg.Environment))
	}

	return slog.New(contextHandler{base.WithAttrs(meta)})
}

// parseLevel accepts slog level names in any case and falls back to info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func formatTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(a.Key, a.Value.Time().Format(time.RFC3339Nano))
	}
	return a
}

// contextHandler adds the stamped context values to each record.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(contextAttrs(ctx)...)
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	for _, key := range stampedKeys {
		switch v := ctx.Value(key).(type) {
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(string(key), v))
			}
		case int64:
			attrs = append(attrs, slog.Int64(string(key), v))
		}
	}
	return attrs
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithSessionID adds a websocket session ID to the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithWorkloadRequest tags the context with the dashboard control that sent a
// websocket workload request and the request's sequence number.
func WithWorkloadRequest(ctx context.Context, control string, seq int64) context.Context {
	ctx = context.WithValue(ctx, ControlKey, control)
	return context.WithValue(ctx, SeqKey, seq)
}

// LogPanic logs a recovered panic with its stack.
func LogPanic(ctx context.Context, logger *slog.Logger, panicValue any, attrs ...any) {
	attrs = append(attrs, "panic", panicValue, "stack_trace", string(debug.Stack()))
	logger.ErrorContext(ctx, "panic recovered", attrs...)
}

// RequestRecord describes one served HTTP request.
type RequestRecord struct {
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
	Bytes     int64
	ClientIP  string
	UserAgent string
	// Quiet marks routine traffic (assets, health checks) that is logged at debug
	// level unless it failed.
	Quiet bool
}

// Level returns the level the request is logged at.
func (rec RequestRecord) Level() slog.Level {
	switch {
	case rec.Status >= 500:
		return slog.LevelError
	case rec.Status >= 400:
		return slog.LevelWarn
	case rec.Quiet:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// LogRequest writes rec as one "http request" line.
func LogRequest(ctx context.Context, logger *slog.Logger, rec RequestRecord) {
	logger.LogAttrs(ctx, rec.Level(), "http request",
		slog.String("method", rec.Method),
		slog.String("path", rec.Path),
		slog.Int("status_code", rec.Status),
		slog.Int64("duration_ms", rec.Duration.Milliseconds()),
		slog.Int64("bytes_written", rec.Bytes),
		slog.String("client_ip", rec.ClientIP),
		slog.String("user_agent", rec.UserAgent),
	)
}
