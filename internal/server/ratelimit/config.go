package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// Rule limits one method on a path. A Path ending in "/" matches every path
// below it; any other Path must match exactly.
type Rule struct {
	Method string
	Path   string
	Limit  int           // requests per Window, 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Allow           map[string]bool // clients that are never limited
	Rules           []Rule
}

// DefaultConfig returns limits suited to a single dashboard talking to the API.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1200,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Allow:           map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// DefaultRules throttles writes harder than reads. Reorders get their own rule
// because a dragged card can fire many moves in a burst.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodPatch, Path: "/api/jobs/", Limit: 120, Window: time.Minute, Burst: 20},
		{Method: http.MethodPost, Path: "/api/jobs", Limit: 60, Window: time.Minute, Burst: 10},
		{Method: http.MethodPost, Path: "/api/candidates", Limit: 120, Window: time.Minute, Burst: 20},
		{Method: http.MethodPatch, Path: "/api/candidates/", Limit: 300, Window: time.Minute, Burst: 30},
		{Method: http.MethodPost, Path: "/api/candidates/", Limit: 120, Window: time.Minute, Burst: 20},
		{Method: http.MethodPut, Path: "/api/assessments/", Limit: 60, Window: time.Minute, Burst: 10},
		{Method: http.MethodPost, Path: "/api/assessments/", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// ParseClients parses a comma-separated client list, e.g. "127.0.0.1, ::1".
func ParseClients(list string) map[string]bool {
	out := make(map[string]bool)
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out[c] = true
		}
	}
	return out
}

// match returns the rule for a request, or nil to fall back to the default.
// The health check and the event stream are never limited.
func match(method, path string, rules []Rule) *Rule {
	if method == http.MethodGet && (path == "/health" || path == "/api/events") {
		return &Rule{}
	}
	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return nil
}
