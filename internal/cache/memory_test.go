package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	c := NewMemory(time.Minute)

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)

	c.Delete("k")
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestMemoryTTLExpiry(t *testing.T) {
	c := NewMemory(time.Minute)
	c.Set("k", []byte("v"), 20*time.Millisecond)

	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestNewFallsBackToMemory(t *testing.T) {
	c := New(Config{Kind: "something-else"})
	c.Set("k", []byte("v"), time.Minute)
	_, ok := c.Get("k")
	require.True(t, ok)
}
