package web

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const traceIDKey ctxKey = 1

func newTraceID() string {
	return uuid.New().String()
}

func setTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace id from the context.
func GetTraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return "00000000-0000-0000-0000-000000000000"
	}

	return v
}
