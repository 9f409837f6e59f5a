package cache

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type query struct {
	Search string `json:"search"`
	Page   int    `json:"page"`
}

func TestRedis_BypassWithoutAddr(t *testing.T) {
	ctx := context.Background()
	r := NewRedis(ctx, Options{})
	assert.False(t, r.Available())

	require.NoError(t, r.SetJSON(ctx, "k", map[string]int{"a": 1}))

	var out map[string]int
	hit, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, r.Invalidate(ctx, "jobs"))
	assert.NoError(t, r.Close())
}

func TestRedis_BypassWhenUnreachable(t *testing.T) {
	r := NewRedis(context.Background(), Options{Addr: "127.0.0.1:1"})
	assert.False(t, r.Available())
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	hit, err := r.GetJSON(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NotEmpty(t, r.Key("jobs", query{}))
}

func TestRedis_Key(t *testing.T) {
	r := &Redis{prefix: "talentflow"}

	a := r.Key("jobs", query{Search: "go", Page: 1})
	b := r.Key("jobs", query{Search: "go", Page: 1})
	c := r.Key("jobs", query{Search: "go", Page: 2})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "talentflow:jobs:list:"))
	assert.NotContains(t, a, "go")
}

// Runs against a live server when TEST_REDIS_ADDR is set.
func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping Redis round trip")
	}
	ctx := context.Background()
	r := NewRedis(ctx, Options{Addr: addr, Prefix: "talentflow-test"})
	require.True(t, r.Available())
	defer func() { _ = r.Close() }()

	key := r.Key("jobs", query{Search: "rust"})
	require.NoError(t, r.SetJSON(ctx, key, query{Search: "rust", Page: 3}))

	var out query
	hit, err := r.GetJSON(ctx, key, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, out.Page)

	require.NoError(t, r.Invalidate(ctx, "jobs"))
	hit, err = r.GetJSON(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, hit)
}
