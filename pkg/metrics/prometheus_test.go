package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewWith(prometheus.NewRegistry())

	r.RecordIngested("sec", 3)
	r.RecordIngested("sec", 2)
	r.RecordExcluded("other_method", 4)
	r.RecordExcluded("missing_timestamp", 0)
	r.RecordError("store")
	r.RecordSentiment("barometer", -12.5)

	assert.Equal(t, 5.0, testutil.ToFloat64(r.ingested.WithLabelValues("sec")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.excluded.WithLabelValues("other_method")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.excluded), "zero exclusions create no series")
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("store")))
	assert.Equal(t, -12.5, testutil.ToFloat64(r.sentiment.WithLabelValues("barometer")))
}
