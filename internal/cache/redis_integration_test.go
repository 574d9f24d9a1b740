//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/shelf-planner/internal/cache"
	"github.com/eugenenazirov/shelf-planner/internal/testutil/containers"
)

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	client, err := cache.Dial(ctx, rc.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewRedis(client, 200*time.Millisecond)

	var got map[string]int
	ok, err := c.Get(ctx, "plan", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "plan", map[string]int{"shelves": 3}))

	ok, err = c.Get(ctx, "plan", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got["shelves"])

	assert.Eventually(t, func() bool {
		var expired map[string]int
		found, err := c.Get(ctx, "plan", &expired)
		return err == nil && !found
	}, 5*time.Second, 50*time.Millisecond)
}

func TestDialRejectsInvalidURL(t *testing.T) {
	_, err := cache.Dial(context.Background(), "not-a-url://")
	assert.Error(t, err)
}
