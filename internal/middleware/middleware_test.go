package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/metrics"
	"github.com/anonto42/socialnet/backend/internal/mocks"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func echoUserID(c echo.Context) error {
	id, ok := UserIDFromContext(c)
	if !ok {
		return c.NoContent(http.StatusTeapot)
	}
	return c.JSON(http.StatusOK, map[string]uint{"id": id})
}

func runWith(mw echo.MiddlewareFunc, handler echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(handler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	token, err := IssueToken(testSecret, &models.User{ID: 42, Email: "a@example.com"}, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(testSecret, &models.User{ID: 42}, -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken("other-secret", &models.User{ID: 42}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "bearer header", header: "Bearer " + token, status: http.StatusOK},
		{name: "query token alone", query: "?token=" + token, status: http.StatusUnauthorized},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "malformed header", header: "Token " + token, status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreign, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := runWith(JWTAuthMiddleware(testSecret), echoUserID, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":42}`, rec.Body.String())
			}
		})
	}
}

func TestQueryToken(t *testing.T) {
	token, err := IssueToken(testSecret, &models.User{ID: 42}, time.Hour)
	require.NoError(t, err)
	chain := func(next echo.HandlerFunc) echo.HandlerFunc {
		return QueryToken()(JWTAuthMiddleware(testSecret)(next))
	}

	t.Run("lifts the token and strips it from the url", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws?token="+token+"&v=1", nil)
		var seenQuery string
		rec := runWith(chain, func(c echo.Context) error {
			seenQuery = c.Request().URL.RawQuery
			return echoUserID(c)
		}, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":42}`, rec.Body.String())
		assert.Equal(t, "v=1", seenQuery)
	})

	t.Run("header wins over query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws?token=garbage", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := runWith(chain, echoUserID, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no token", func(t *testing.T) {
		rec := runWith(chain, echoUserID, httptest.NewRequest(http.MethodGet, "/ws", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

type stubVerifier struct {
	uid string
	err error
}

func (s stubVerifier) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.Token{UID: s.uid}, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	t.Run("resolves linked account", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("GetUserByFirebaseUID", mock.Anything, "fb-1").Return(&models.User{ID: 7}, nil)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer id-token")
		rec := runWith(FirebaseAuthMiddleware(stubVerifier{uid: "fb-1"}, users), echoUserID, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":7}`, rec.Body.String())
	})

	t.Run("unlinked account", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("GetUserByFirebaseUID", mock.Anything, "fb-2").Return(nil, repositories.ErrNotFound)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer id-token")
		rec := runWith(FirebaseAuthMiddleware(stubVerifier{uid: "fb-2"}, users), echoUserID, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		users := new(mocks.MockUserRepository)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer id-token")
		rec := runWith(FirebaseAuthMiddleware(stubVerifier{err: errors.New("expired")}, users), echoUserID, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		users.AssertNotCalled(t, "GetUserByFirebaseUID", mock.Anything, mock.Anything)
	})
}

func TestClientLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newClientLimiter(2, time.Minute, 2, time.Minute, func() time.Time { return now })

	ok, _ := limiter.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = limiter.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, retryAfter := limiter.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.InDelta(t, float64(30*time.Second), float64(retryAfter), float64(time.Millisecond))
	ok, _ = limiter.Allow("10.0.0.2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(31 * time.Second)
	ok, _ = limiter.Allow("10.0.0.1")
	assert.True(t, ok, "tokens refill over the window")

	now = now.Add(2 * time.Minute)
	limiter.Allow("10.0.0.3")
	assert.Equal(t, 1, limiter.size(), "idle clients are swept")
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Hour)
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	mw := RateLimit(limiter, "/health")

	first := runWith(mw, ok, httptest.NewRequest(http.MethodGet, "/", nil))
	second := runWith(mw, ok, httptest.NewRequest(http.MethodGet, "/", nil))
	health := runWith(mw, ok, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "3600", second.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, health.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seenID string
	handler := func(c echo.Context) error {
		seenID = logging.RequestIDFromContext(c.Request().Context())
		SetUser(c, &models.JwtCustomClaims{UserID: 3})
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/x", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := runWith(RequestLogger(logger), handler, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-1", seenID)
	assert.Equal(t, "req-1", rec.Header().Get(echo.HeaderXRequestID))
	line := buf.String()
	assert.True(t, strings.Contains(line, `"msg":"request completed"`), line)
	assert.Contains(t, line, `"status":404`)
	assert.Contains(t, line, `"user_id":3`)
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	e := echo.New()
	e.Use(HTTPMetrics(m))
	e.GET("/posts/:postId", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	count, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "both requests share the route label")
}
