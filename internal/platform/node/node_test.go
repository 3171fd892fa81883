package node

import (
	"context"
	"testing"
	"time"
)

func TestOperationValues(t *testing.T) {
	ctx := context.Background()

	if got := OperationValues(ctx); got != nil {
		t.Errorf("Got %v, want nil outside an operation", got)
	}

	now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx, span := NewOperationContext(ctx, "vault.Test", now)
	defer span.End()

	v := OperationValues(ctx)
	if v == nil {
		t.Fatalf("Want non-nil Values inside an operation")
	}

	if v.Now != now {
		t.Errorf("Got %v, want %v", v.Now, now)
	}

	if v.TraceID != span.SpanContext().TraceID.String() {
		t.Errorf("Got %v, want %v", v.TraceID, span.SpanContext().TraceID.String())
	}
}
