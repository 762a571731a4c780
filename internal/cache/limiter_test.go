package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiterPerDevice(t *testing.T) {
	l := NewMemoryLimiter(2)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "dev-1"))
	assert.True(t, l.Allow(ctx, "dev-1"))
	assert.False(t, l.Allow(ctx, "dev-1"))

	// other devices have their own window
	assert.True(t, l.Allow(ctx, "dev-2"))
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	l := NewMemoryLimiter(1)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "dev-1"))
	assert.False(t, l.Allow(ctx, "dev-1"))

	// force the window to lapse
	l.mu.Lock()
	l.resets["dev-1"] = l.resets["dev-1"].Add(-2 * l.window)
	l.mu.Unlock()

	assert.True(t, l.Allow(ctx, "dev-1"))
}

func TestMemoryLimiterDisabledWhenZero(t *testing.T) {
	l := NewMemoryLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(context.Background(), "dev-1"))
	}
}
