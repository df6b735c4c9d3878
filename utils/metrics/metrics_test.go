package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFeedFetch(t *testing.T) {
	before := testutil.ToFloat64(FeedFetchTotal.WithLabelValues("zhihu", "success"))
	RecordFeedFetch("zhihu", "success", 0.2)
	assert.Equal(t, before+1, testutil.ToFloat64(FeedFetchTotal.WithLabelValues("zhihu", "success")))
}

func TestRecordAggregateSource(t *testing.T) {
	okBefore := testutil.ToFloat64(AggregateSourceTotal.WithLabelValues("hupu", "success"))
	errBefore := testutil.ToFloat64(AggregateSourceTotal.WithLabelValues("hupu", "error"))

	RecordAggregateSource("hupu", true)
	RecordAggregateSource("hupu", false)
	RecordAggregateSource("hupu", false)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(AggregateSourceTotal.WithLabelValues("hupu", "success")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(AggregateSourceTotal.WithLabelValues("hupu", "error")))
}

func TestRecordMediaRejection(t *testing.T) {
	before := testutil.ToFloat64(MediaProxyRejections.WithLabelValues("forbidden address"))
	rejectedBefore := testutil.ToFloat64(MediaProxyTotal.WithLabelValues("rejected"))

	RecordMediaRejection("forbidden address")

	assert.Equal(t, before+1, testutil.ToFloat64(MediaProxyRejections.WithLabelValues("forbidden address")))
	assert.Equal(t, rejectedBefore+1, testutil.ToFloat64(MediaProxyTotal.WithLabelValues("rejected")))
}
