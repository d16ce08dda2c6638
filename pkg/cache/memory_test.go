package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_JSONRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.SetJSON(ctx, "cart:u1", map[string]int{"p1": 2}, time.Minute))

	var got map[string]int
	ok, err := m.GetJSON(ctx, "cart:u1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, got["p1"])

	now = now.Add(2 * time.Minute)
	ok, err = m.GetJSON(ctx, "cart:u1", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_DeletePattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SetJSON(ctx, "products:list:m1:a", 1, 0))
	require.NoError(t, m.SetJSON(ctx, "products:list:m1:b", 2, 0))
	require.NoError(t, m.SetJSON(ctx, "products:list:m2:a", 3, 0))

	require.NoError(t, m.DeletePattern(ctx, "products:list:m1:*"))

	_, ok := m.Raw("products:list:m1:a")
	assert.False(t, ok)
	_, ok = m.Raw("products:list:m2:a")
	assert.True(t, ok)
}

func TestMemory_LockOwnership(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.AcquireLock(ctx, "lock:inventory:p1", "a", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = m.AcquireLock(ctx, "lock:inventory:p1", "b", time.Second)
	assert.False(t, ok)

	// a foreign owner cannot release
	require.NoError(t, m.ReleaseLock(ctx, "lock:inventory:p1", "b"))
	ok, _ = m.AcquireLock(ctx, "lock:inventory:p1", "b", time.Second)
	assert.False(t, ok)

	require.NoError(t, m.ReleaseLock(ctx, "lock:inventory:p1", "a"))
	ok, _ = m.AcquireLock(ctx, "lock:inventory:p1", "b", time.Second)
	assert.True(t, ok)
}
