package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docweave/cache"
)

func TestCache_SetGet(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	v, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, "value1", v)
}

func TestCache_MissingKey(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Close()

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New(10 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("key1")
	assert.False(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")
	_, ok := c.Get("key1")
	assert.False(t, ok)
}

func TestFingerprint_DeterministicAndSensitiveToEachInput(t *testing.T) {
	a := cache.Fingerprint([]byte("tpl"), []byte(`{"x":1}`), []byte("opt"))
	b := cache.Fingerprint([]byte("tpl"), []byte(`{"x":1}`), []byte("opt"))
	assert.Equal(t, a, b)

	c := cache.Fingerprint([]byte("tpl2"), []byte(`{"x":1}`), []byte("opt"))
	assert.NotEqual(t, a, c)

	d := cache.Fingerprint([]byte("tpl"), []byte(`{"x":2}`), []byte("opt"))
	assert.NotEqual(t, a, d)
}
