package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// TraceMethodCall opens a segment named after the struct or package and the
// method within the transaction carried by ctx. Without a transaction it
// returns a nil tracer, which is safe to use.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn:   txn,
		seg:   txn.StartSegment(fmt.Sprintf("%s %s", structOrPackageName, methodName)),
		start: time.Now(),
	}
}

// MethodTracer collects analytics for a single method call within an
// existing trace.
type MethodTracer struct {
	txn   *newrelic.Transaction
	seg   *newrelic.Segment
	start time.Time
}

// AddAttribute adds a key-value pair metadata to the method trace
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}

	t.seg.AddAttribute(key, value)
}

// OnError observes an error within a method trace
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}

	t.seg.AddAttribute("error", err.Error())
	t.txn.NoticeError(err)
}

// End completes the trace, annotating the segment with its wall time.
func (t *MethodTracer) End() {
	if t == nil {
		return
	}

	t.seg.AddAttribute("duration_ms", time.Since(t.start).Milliseconds())
	t.seg.End()
}
