package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoinRateLimiter(t *testing.T) {
	rl := NewJoinRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("u1"), "attempt %d should pass", i)
	}
	assert.False(t, rl.Allow("u1"))

	// Other identities are unaffected.
	assert.True(t, rl.Allow("u2"))
}

func TestJoinRateLimiterWindowSlides(t *testing.T) {
	rl := NewJoinRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("u1"))
}
