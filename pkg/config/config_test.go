package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "AUTH_PROVIDER", "FRIEND_REREQUEST_COOLDOWN", "CORS_ALLOW_ORIGINS", "RATE_LIMIT_REQUESTS", "DB_AUTO_MIGRATE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AuthProviderJWT, cfg.AuthProvider)
	assert.Equal(t, time.Duration(0), cfg.FriendRerequestCooldown)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("AUTH_PROVIDER", "Firebase")
	t.Setenv("MEDIA_BACKEND", "S3")
	t.Setenv("FRIEND_REREQUEST_COOLDOWN", "168h")
	t.Setenv("RATE_LIMIT_WINDOW", "30")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, AuthProviderFirebase, cfg.AuthProvider)
	assert.Equal(t, MediaBackendS3, cfg.MediaBackend)
	assert.Equal(t, 168*time.Hour, cfg.FriendRerequestCooldown)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.AutoMigrate)
}

func TestTypedHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "many")
	t.Setenv("SOME_DURATION", "soon")
	t.Setenv("NEGATIVE_DURATION", "-5")
	t.Setenv("SOME_BOOL", "perhaps")

	assert.Equal(t, 7, getInt("SOME_INT", 7))
	assert.Equal(t, time.Minute, getDuration("SOME_DURATION", time.Minute))
	assert.Equal(t, time.Minute, getDuration("NEGATIVE_DURATION", time.Minute))
	assert.True(t, getBool("SOME_BOOL", true))
}
