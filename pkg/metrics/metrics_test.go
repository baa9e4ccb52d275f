package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoApplication(t *testing.T) {
	ctx := context.Background()

	tracer := TraceMethodCall(ctx, "metrics", "TestNoApplication")
	assert.Nil(t, tracer)

	// All operations are no-ops without an application
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("error"))
	tracer.End()

	RecordEvent(ctx, "TestEvent", map[string]interface{}{"key": "value"})
	RecordCount(ctx, "TestCount", 1)
	RecordDuration(ctx, "TestDuration", time.Second)
}

func TestDisabledApplication(t *testing.T) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("locker-bridge-test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)

	ctx := NewContext(context.Background(), app)
	recorder, ok := fromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, app, recorder)

	txn := app.StartTransaction("TestDisabledApplication")
	defer txn.End()
	ctx = newrelic.NewContext(ctx, txn)

	tracer := TraceMethodCall(ctx, "metrics", "TestDisabledApplication")
	require.NotNil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.OnError(nil)
	tracer.OnError(errors.New("error"))
	tracer.End()

	RecordEvent(ctx, "TestEvent", map[string]interface{}{"key": "value"})
	RecordCount(ctx, "TestCount", 1)
	RecordDuration(ctx, "TestDuration", time.Second)
}

type testRecorder struct {
	events  map[string][]map[string]interface{}
	metrics map[string][]float64
}

func (r *testRecorder) RecordCustomEvent(eventType string, params map[string]interface{}) {
	r.events[eventType] = append(r.events[eventType], params)
}

func (r *testRecorder) RecordCustomMetric(name string, value float64) {
	r.metrics[name] = append(r.metrics[name], value)
}

func TestRecorder(t *testing.T) {
	recorder := &testRecorder{
		events:  make(map[string][]map[string]interface{}),
		metrics: make(map[string][]float64),
	}
	ctx := NewContext(context.Background(), recorder)

	RecordEvent(ctx, "TestEvent", map[string]interface{}{"key": "value"})
	RecordCount(ctx, "TestCount", 3)
	RecordDuration(ctx, "TestDuration", 1500*time.Millisecond)

	require.Len(t, recorder.events["TestEvent"], 1)
	assert.Equal(t, "value", recorder.events["TestEvent"][0]["key"])
	assert.Equal(t, []float64{3}, recorder.metrics["TestCount"])
	assert.Equal(t, []float64{1500}, recorder.metrics["TestDuration"])
}
