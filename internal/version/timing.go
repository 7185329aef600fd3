package version

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/MyCarrier-DevOps/go-gitversion/internal/version"

// Timer accumulates elapsed time per operation name. Each timed operation
// also runs inside a tracing span. A Timer is safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	tracer trace.Tracer
	now    func() time.Time
}

// NewTimer creates a Timer that opens spans on tracer. A nil tracer uses
// the global tracer provider.
func NewTimer(tracer trace.Tracer) *Timer {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Timer{
		totals: make(map[string]time.Duration),
		tracer: tracer,
		now:    time.Now,
	}
}

// Time runs fn in a span called name and adds its duration to the total
// for name.
func (t *Timer) Time(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := t.tracer.Start(ctx, name)
	defer span.End()

	start := t.now()
	err := fn(ctx)
	elapsed := t.now().Sub(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	t.mu.Lock()
	t.totals[name] += elapsed
	t.mu.Unlock()

	return err
}

// Totals returns a copy of the per-operation totals.
func (t *Timer) Totals() map[string]time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]time.Duration, len(t.totals))
	for k, v := range t.totals {
		out[k] = v
	}
	return out
}

// Total returns the sum of all operation totals.
func (t *Timer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sum time.Duration
	for _, v := range t.totals {
		sum += v
	}
	return sum
}

// JSON renders the totals in milliseconds, plus a "total" key equal to
// the sum of the other values.
func (t *Timer) JSON() ([]byte, error) {
	totals := t.Totals()
	out := make(map[string]int64, len(totals)+1)
	var sum int64
	for k, v := range totals {
		out[k] = v.Milliseconds()
		sum += out[k]
	}
	out["total"] = sum
	return json.Marshal(out)
}
