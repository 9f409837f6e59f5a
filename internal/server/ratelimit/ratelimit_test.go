package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(cfg *Config) (*Limiter, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(cfg)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 3, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		ok, info := l.Allow("1.2.3.4", "/api/jobs", http.MethodGet)
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	ok, info := l.Allow("1.2.3.4", "/api/jobs", http.MethodGet)
	assert.False(t, ok)
	assert.Equal(t, 20*time.Second, info.RetryAfter)

	ok, _ = l.Allow("5.6.7.8", "/api/jobs", http.MethodGet)
	assert.True(t, ok, "clients have separate buckets")
}

func TestLimiter_Refill(t *testing.T) {
	l, now := newTestLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer l.Stop()
	l.config.Rules = []Rule{{Method: http.MethodPatch, Path: "/api/jobs/", Limit: 60, Window: time.Minute, Burst: 1}}

	ok, _ := l.Allow("c", "/api/jobs/a/reorder", http.MethodPatch)
	require.True(t, ok)
	ok, _ = l.Allow("c", "/api/jobs/b/reorder", http.MethodPatch)
	assert.False(t, ok, "prefix rule shares one bucket")

	*now = now.Add(time.Second)
	ok, _ = l.Allow("c", "/api/jobs/b/reorder", http.MethodPatch)
	assert.True(t, ok)
}

func TestLimiter_Unlimited(t *testing.T) {
	tests := []struct {
		name   string
		cfg    *Config
		client string
		path   string
	}{
		{name: "disabled", cfg: &Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute}, client: "c", path: "/api/jobs"},
		{name: "allow list", cfg: &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, Allow: ParseClients("10.0.0.1, c")}, client: "c", path: "/api/jobs"},
		{name: "health", cfg: &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute}, client: "c", path: "/health"},
		{name: "events", cfg: &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute}, client: "c", path: "/api/events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLimiter(tt.cfg)
			defer l.Stop()
			for i := 0; i < 5; i++ {
				ok, _ := l.Allow(tt.client, tt.path, http.MethodGet)
				assert.True(t, ok)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	rules := DefaultRules()

	r := match(http.MethodPost, "/api/jobs", rules)
	require.NotNil(t, r)
	assert.Equal(t, 60, r.Limit)

	r = match(http.MethodPatch, "/api/jobs/abc/reorder", rules)
	require.NotNil(t, r)
	assert.Equal(t, "/api/jobs/", r.Path)

	assert.Nil(t, match(http.MethodGet, "/api/candidates", rules))
}

func TestLimiter_EvictIdle(t *testing.T) {
	l, now := newTestLimiter(&Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute})
	defer l.Stop()

	l.Allow("old", "/api/jobs", http.MethodGet)
	*now = now.Add(2 * time.Hour)
	l.Allow("new", "/api/jobs", http.MethodGet)

	l.evictIdle(now.Add(-time.Hour))
	assert.Len(t, l.buckets, 1)
	l.Stop()
}
