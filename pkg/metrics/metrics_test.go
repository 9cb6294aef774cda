package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector_IsolatedRegistries(t *testing.T) {
	// Two collectors with the same namespace must not collide on separate registries.
	a := NewCollector("xcri", prometheus.NewRegistry())
	b := NewCollector("xcri", prometheus.NewRegistry())
	require.NotNil(t, a)
	require.NotNil(t, b)

	a.RecordAPIRequest("/athletes", "GET", "200")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.APIRequestsTotal.WithLabelValues("/athletes", "GET", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.APIRequestsTotal.WithLabelValues("/athletes", "GET", "200")))
}

func TestCollector_Recorders(t *testing.T) {
	c := NewCollector("xcri", prometheus.NewRegistry())

	c.RecordAPIError("validation_error", "/teams")
	c.RecordDBError("select_error")
	c.RecordFeedback("bug", "created")
	c.RateLimitRejections.Inc()
	c.UpdateDBConnectionPool(3, 2, 5)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.APIErrorsTotal.WithLabelValues("validation_error", "/teams")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DBErrorsTotal.WithLabelValues("select_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FeedbackSubmissions.WithLabelValues("bug", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RateLimitRejections))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("in_use")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("total")))
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := NewCollector("xcri", prometheus.NewRegistry())
	timer := c.NewTimer(c.KnockoutAggregation.WithLabelValues("head_to_head"))
	d := timer.ObserveDuration()
	assert.GreaterOrEqual(t, d.Nanoseconds(), int64(0))
	assert.Equal(t, 1, testutil.CollectAndCount(c.KnockoutAggregation))
}
