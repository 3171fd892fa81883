package node

import (
	"context"
	"time"

	"go.opencensus.io/trace"
)

// ctxKey represents the type of value for the context key.
type ctxKey int

// KeyValues is how operation values are stored/retrieved.
const KeyValues ctxKey = 1

// Values represent state for each ledger operation.
type Values struct {
	TraceID string
	Now     time.Time
}

// NewOperationContext starts a trace span for a ledger operation and stores
// the operation Values in the Context. It is called at the top of every
// public vault entry point.
func NewOperationContext(ctx context.Context, name string,
	now time.Time) (context.Context, *trace.Span) {

	ctx, span := trace.StartSpan(ctx, name)

	v := Values{
		TraceID: span.SpanContext().TraceID.String(),
		Now:     now,
	}
	ctx = context.WithValue(ctx, KeyValues, &v)

	return ctx, span
}

// OperationValues returns the Values for the operation in progress, or nil
// when the Context did not pass through NewOperationContext.
func OperationValues(ctx context.Context) *Values {
	v, ok := ctx.Value(KeyValues).(*Values)
	if !ok {
		return nil
	}
	return v
}
