package tmdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	c := newCache(time.Hour)

	_, ok := c.get("movie:12345")
	assert.False(t, ok, "empty cache should miss")

	c.set("movie:12345", &Movie{ID: 12345, Title: "Test Movie"})

	got, ok := c.get("movie:12345")
	require.True(t, ok, "should hit after set")
	assert.Equal(t, "Test Movie", got.(*Movie).Title)

	_, ok = c.get("movie:99999")
	assert.False(t, ok, "different key should miss")
}

func TestCache_Expiry(t *testing.T) {
	c := newCache(10 * time.Millisecond)

	c.set("movie:12345", &Movie{ID: 12345, Title: "Test"})

	_, ok := c.get("movie:12345")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.get("movie:12345")
	assert.False(t, ok, "should miss after TTL")
}
