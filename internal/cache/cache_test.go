package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/shelf-planner/internal/shelving"
)

type cachedPlan struct {
	Shelves []shelving.ShelfAssignment `json:"shelves"`
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	plan := cachedPlan{Shelves: shelving.PackShelves([]shelving.Item{
		{ID: "A", Title: "A", Weight: 3, Value: 10},
		{ID: "B", Title: "B", Weight: 6, Value: 4},
	}, 8, 4)}

	require.NoError(t, c.Set(ctx, "k", plan))

	var got cachedPlan
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, plan, got)
}

func TestMemoryMiss(t *testing.T) {
	var got cachedPlan
	ok, err := NewMemory(time.Minute).Get(context.Background(), "missing", &got)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute, WithClock(func() time.Time { return now }))

	require.NoError(t, c.Set(ctx, "k", 42))

	var got int
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemoryWithoutTTLKeepsEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewMemory(0, WithClock(func() time.Time { return now }))
	require.NoError(t, c.Set(ctx, "k", "v"))

	now = now.Add(24 * time.Hour)
	var got string
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestMemorySweepsKeysThatAreNeverReadAgain(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute, WithClock(func() time.Time { return now }))

	for i := 0; i < 10000; i++ {
		require.NoError(t, c.Set(ctx, "plan:"+strconv.Itoa(i), i))
		now = now.Add(time.Hour)
	}

	assert.LessOrEqual(t, c.Len(), sweepEvery)
}

func TestMemorySweepKeepsLiveEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory(time.Hour, WithClock(func() time.Time { return now }))

	require.NoError(t, c.Set(ctx, "stale", 1))
	now = now.Add(2 * time.Hour)
	require.NoError(t, c.Set(ctx, "live", 2))
	for i := 0; i < sweepEvery; i++ {
		require.NoError(t, c.Set(ctx, "fresh", i))
	}

	assert.Equal(t, 2, c.Len())

	var got int
	ok, err := c.Get(ctx, "live", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestKeyIsSensitiveToEveryInput(t *testing.T) {
	items := []shelving.Item{{ID: "A", Title: "A", Weight: 3, Value: 10}, {ID: "B", Title: "B", Weight: 1, Value: 1}}
	base := Key("shelves", 8, 4, items)

	assert.Equal(t, base, Key("shelves", 8, 4, append([]shelving.Item(nil), items...)))
	assert.NotEqual(t, base, Key("dangerous", 8, 4, items))
	assert.NotEqual(t, base, Key("shelves", 9, 4, items))
	assert.NotEqual(t, base, Key("shelves", 8, 3, items))
	assert.NotEqual(t, base, Key("shelves", 8, 4, []shelving.Item{items[1], items[0]}))

	changed := append([]shelving.Item(nil), items...)
	changed[1].Value = 2
	assert.NotEqual(t, base, Key("shelves", 8, 4, changed))
	assert.Contains(t, base, "shelves:")
}
