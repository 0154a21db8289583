package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRecommend(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequests.WithLabelValues("ok"))
	RecordRecommend("ok", 5, 3*time.Millisecond)
	RecordRecommend("ok", 0, time.Millisecond)
	assert.Equal(t, before+2, testutil.ToFloat64(RecommendRequests.WithLabelValues("ok")))
}

func TestRecordNode(t *testing.T) {
	before := testutil.ToFloat64(NodeErrors.WithLabelValues("recall.u2u"))
	RecordNode("recall.u2u", time.Millisecond, nil)
	assert.Equal(t, before, testutil.ToFloat64(NodeErrors.WithLabelValues("recall.u2u")))

	RecordNode("recall.u2u", time.Millisecond, errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(NodeErrors.WithLabelValues("recall.u2u")))
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("memory"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("memory"))

	RecordCacheLookup("memory", true)
	RecordCacheLookup("memory", false)
	RecordCacheLookup("memory", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheHits.WithLabelValues("memory")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheMisses.WithLabelValues("memory")))
}

func TestUpdateSnapshot(t *testing.T) {
	UpdateSnapshot(3, 4, 5, 6)
	assert.Equal(t, 3.0, testutil.ToFloat64(SnapshotInfo.WithLabelValues("users")))
	assert.Equal(t, 6.0, testutil.ToFloat64(SnapshotInfo.WithLabelValues("ratings")))
}
