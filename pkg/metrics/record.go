package metrics

import (
	"context"
	"time"
)

// RecordEvent records a new event with a name and set of key-value pairs
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	if recorder, ok := fromContext(ctx); ok {
		recorder.RecordCustomEvent(eventName, kvPairs)
	}
}

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if recorder, ok := fromContext(ctx); ok {
		recorder.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric, in milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if recorder, ok := fromContext(ctx); ok {
		recorder.RecordCustomMetric(metricName, float64(duration/time.Millisecond))
	}
}
