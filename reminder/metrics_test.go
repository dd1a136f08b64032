package reminder

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_TrackEventLifecycle(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	engine, client, _ := setupService(t, testConfig(), metrics)
	sub, _ := subscribe(t, engine, client)

	require.NoError(t, client.AddEvent("fires", "", 50*time.Millisecond))
	require.NoError(t, client.AddEvent("cancelled", "", time.Minute))
	require.NoError(t, client.Cancel("cancelled"))
	require.Eventually(t, func() bool { return len(sub.Notifications("fires")) == 1 }, waitFor, tick)

	// Gauges are refreshed after each processed message.
	_, err := client.Events()
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.EventsAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsFired))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsCancelled))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.EventsPending))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Subscribers))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics
	assert.NotPanics(t, func() {
		metrics.eventAdded()
		metrics.eventFired()
		metrics.eventCancelled()
		metrics.restarted()
		metrics.observe(1, 1)
	})
}
