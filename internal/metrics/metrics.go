package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Metrics groups the service counters. A nil *Metrics is valid and records nothing, which keeps
// services usable in tests without a registry.
type Metrics struct {
	friendRequests  *prometheus.CounterVec
	friendResponses *prometheus.CounterVec
	unfriends       prometheus.Counter
	likes           *prometheus.CounterVec
	comments        *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		friendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "friend_requests_total",
			Help: "Total number of friend request attempts",
		}, []string{"status"}),
		friendResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "friend_responses_total",
			Help: "Total number of accept/reject attempts on friend requests",
		}, []string{"action", "status"}),
		unfriends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unfriends_total",
			Help: "Total number of removed friendships",
		}),
		likes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_likes_total",
			Help: "Like toggles by resulting action",
		}, []string{"action"}),
		comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_comments_total",
			Help: "Comment mutations by action",
		}, []string{"action"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notifications emitted by type and outcome",
		}, []string{"type", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.friendRequests,
		m.friendResponses,
		m.unfriends,
		m.likes,
		m.comments,
		m.notifications,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) IncFriendRequest(status string) {
	if m == nil {
		return
	}
	m.friendRequests.WithLabelValues(status).Inc()
}

func (m *Metrics) IncFriendResponse(action, status string) {
	if m == nil {
		return
	}
	m.friendResponses.WithLabelValues(action, status).Inc()
}

func (m *Metrics) IncUnfriend() {
	if m == nil {
		return
	}
	m.unfriends.Inc()
}

func (m *Metrics) IncLike(liked bool) {
	if m == nil {
		return
	}
	action := "unlike"
	if liked {
		action = "like"
	}
	m.likes.WithLabelValues(action).Inc()
}

func (m *Metrics) IncComment(action string) {
	if m == nil {
		return
	}
	m.comments.WithLabelValues(action).Inc()
}

func (m *Metrics) IncNotification(notificationType, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(notificationType, status).Inc()
}

// ObserveHTTP records one served request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
