package metrics

import (
	"context"
	"time"
)

// RecordEvent records a New Relic custom event. It is a no-op unless ctx holds
// an application.
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	app, ok := appFromContext(ctx)
	if !ok {
		return
	}
	app.RecordCustomEvent(eventName, kvPairs)
}

// RecordCount records a custom metric with the given count.
func RecordCount(ctx context.Context, metricName string, count uint64) {
	recordMetric(ctx, metricName, float64(count))
}

// RecordDuration records a custom metric in milliseconds.
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	recordMetric(ctx, metricName, float64(duration)/float64(time.Millisecond))
}

func recordMetric(ctx context.Context, metricName string, value float64) {
	app, ok := appFromContext(ctx)
	if !ok {
		return
	}
	app.RecordCustomMetric(metricName, value)
}
