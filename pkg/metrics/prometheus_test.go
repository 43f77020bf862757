package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordFetch("fund_nav", "ok")
	r.RecordFetch("fund_nav", "ok")
	r.RecordCache("series", "hit")
	r.RecordIndicatorFailure("MFI")
	r.RecordError("normalize")
	r.RecordLatency("analysis", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetches.WithLabelValues("fund_nav", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("series", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.indicatorFailures.WithLabelValues("MFI")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("normalize")))
}
