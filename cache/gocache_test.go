package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestByteCache_SetGet(t *testing.T) {
	bc := NewByteCache(time.Minute, 2*time.Minute)

	_, found := bc.Get("missing")
	assert.False(t, found)

	bc.Set("key", []byte("value"), 0)
	data, found := bc.Get("key")
	assert.True(t, found)
	assert.Equal(t, []byte("value"), data)
}

func TestByteCache_Expiry(t *testing.T) {
	bc := NewByteCache(time.Minute, 2*time.Minute)

	bc.Set("key", []byte("value"), 20*time.Millisecond)
	_, found := bc.Get("key")
	assert.True(t, found)

	time.Sleep(40 * time.Millisecond)
	_, found = bc.Get("key")
	assert.False(t, found)
}

func TestByteCache_DeleteAndClear(t *testing.T) {
	bc := NewByteCache(time.Minute, 2*time.Minute)

	bc.Set("a", []byte("1"), 0)
	bc.Set("b", []byte("2"), 0)
	assert.Equal(t, 2, bc.ItemCount())

	bc.Delete("a")
	_, found := bc.Get("a")
	assert.False(t, found)

	bc.Clear()
	assert.Equal(t, 0, bc.ItemCount())
}
