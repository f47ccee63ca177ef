package log

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// TraceIDKey is the context key for the trace id.
const TraceIDKey ContextKey = "trace_id"

// NewTraceID returns a random id correlating the log lines of one command
// run or one consumed event.
func NewTraceID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("trc_%d", time.Now().UnixNano())
	}
	return "trc_" + hex.EncodeToString(b)
}

// WithTrace returns ctx carrying id and a context logger tagged with it.
func WithTrace(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, TraceIDKey, id)
	return WithContext(ctx, FromContext(ctx).With("trace_id", id))
}

// TraceID extracts the trace id from ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}
