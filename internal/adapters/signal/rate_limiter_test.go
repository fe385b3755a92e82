package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("c1"), "attempt %d", i)
	}
	assert.False(t, rl.Allow("c1"), "window exhausted")

	// other connections have their own window
	assert.True(t, rl.Allow("c2"))

	rl.Forget("c1")
	assert.True(t, rl.Allow("c1"), "history dropped on disconnect")
}
