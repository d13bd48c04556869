package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("a", 3, 0.001), "request %d should pass", i)
	}
	assert.False(t, l.Allow("a", 3, 0.001))
}

func TestAllowRefills(t *testing.T) {
	l := New()
	assert.True(t, l.Allow("a", 1, 100))
	assert.False(t, l.Allow("a", 1, 100))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Allow("a", 1, 100))
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	assert.True(t, l.Allow("a", 1, 0.001))
	assert.False(t, l.Allow("a", 1, 0.001))
	assert.True(t, l.Allow("b", 1, 0.001))
}
