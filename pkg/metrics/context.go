package metrics

import (
	"context"
)

// Recorder receives custom events and metrics. *newrelic.Application is the
// production implementation.
type Recorder interface {
	RecordCustomEvent(eventType string, params map[string]interface{})
	RecordCustomMetric(name string, value float64)
}

type recorderContextKey struct{}

// NewContext returns a copy of ctx whose events and metrics go to recorder.
func NewContext(ctx context.Context, recorder Recorder) context.Context {
	return context.WithValue(ctx, recorderContextKey{}, recorder)
}

func fromContext(ctx context.Context) (Recorder, bool) {
	recorder, ok := ctx.Value(recorderContextKey{}).(Recorder)
	return recorder, ok && recorder != nil
}
