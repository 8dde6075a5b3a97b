package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAreRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncFriendRequest(StatusSuccess)
	m.IncFriendRequest(StatusSuccess)
	m.IncFriendRequest(StatusFailed)
	m.IncFriendResponse("accept", StatusSuccess)
	m.IncLike(true)
	m.IncLike(false)
	m.IncNotification("like", StatusSuccess)
	m.ObserveHTTP("GET", "/api/v1/friends/list", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.friendRequests.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.friendRequests.WithLabelValues(StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.friendResponses.WithLabelValues("accept", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.likes.WithLabelValues("like")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.likes.WithLabelValues("unlike")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/friends/list", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncFriendRequest(StatusSuccess)
		m.IncUnfriend()
		m.IncComment("add")
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
}
