package logging

import (
	"context"
	"maps"
	"slices"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = iota
	// requestIDKey is the context key for request ID.
	requestIDKey
	// scopeKey is the context key for the fields added since WithLogger.
	scopeKey
)

type field struct {
	key   string
	value any
}

// scope remembers the logger given to WithLogger and the fields layered on
// top of it, so setting a key again replaces its value instead of
// repeating it in every line.
type scope struct {
	root   *zerolog.Logger
	fields []field
}

func (s *scope) with(key string, value any) *scope {
	fields := make([]field, 0, len(s.fields)+1)
	replaced := false
	for _, f := range s.fields {
		if f.key == key {
			f.value = value
			replaced = true
		}
		fields = append(fields, f)
	}
	if !replaced {
		fields = append(fields, field{key, value})
	}
	return &scope{root: s.root, fields: fields}
}

func (s *scope) logger() *zerolog.Logger {
	logCtx := s.root.With()
	for _, f := range s.fields {
		logCtx = addFieldToContext(logCtx, f.key, f.value)
	}
	l := logCtx.Logger()
	return &l
}

func scopeFrom(ctx context.Context) *scope {
	if s, ok := ctx.Value(scopeKey).(*scope); ok {
		return s
	}
	return &scope{root: FromContext(ctx)}
}

// WithLogger adds a logger to the context. Fields added earlier through
// the With helpers are dropped.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	ctx = context.WithValue(ctx, scopeKey, &scope{root: logger})
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// WithRequestID adds a request ID to the context for tracing.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return WithField(ctx, "request_id", requestID)
}

// RequestID extracts the request ID from context.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithFields adds structured fields to the logger in the context, in key
// order.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	s := scopeFrom(ctx)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		s = s.with(key, fields[key])
	}
	return withScope(ctx, s)
}

// WithField adds a single field to the logger in the context. A key that
// is already present takes the new value.
func WithField(ctx context.Context, key string, value any) context.Context {
	return withScope(ctx, scopeFrom(ctx).with(key, value))
}

func withScope(ctx context.Context, s *scope) context.Context {
	ctx = context.WithValue(ctx, scopeKey, s)
	return context.WithValue(ctx, loggerKey, s.logger())
}

// addFieldToContext adds a field to the logger context based on its type.
func addFieldToContext(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case int64:
		return ctx.Int64(key, v)
	case float64:
		return ctx.Float64(key, v)
	case bool:
		return ctx.Bool(key, v)
	case error:
		if key == "error" || key == "err" {
			return ctx.Err(v)
		}
		return ctx.Str(key, v.Error())
	default:
		return ctx.Interface(key, v)
	}
}

// WithHandler adds the resolved handler identifier to the logger.
func WithHandler(ctx context.Context, handler string) context.Context {
	return WithField(ctx, "handler", handler)
}

// WithRoute adds the matched route name to the logger.
func WithRoute(ctx context.Context, route string) context.Context {
	return WithField(ctx, "route", route)
}

// WithPhase adds the pipeline phase (dispatch, render, finish) to the logger.
func WithPhase(ctx context.Context, phase string) context.Context {
	return WithField(ctx, "phase", phase)
}

// WithError adds an error to the context logger.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return WithField(ctx, "error", err)
}
