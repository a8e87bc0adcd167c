package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochAdvance(t *testing.T) {
	ctx := context.Background()
	g := NewGenerationGuard()

	cur, err := g.Current(ctx, "keyframes:a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), cur)

	first, _ := g.Advance(ctx, "keyframes:a")
	second, _ := g.Advance(ctx, "keyframes:a")
	other, _ := g.Advance(ctx, "keyframes:b")

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(1), other)

	cur, _ = g.Current(ctx, "keyframes:a")
	assert.Equal(t, second, cur)
}

func TestTryLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewGenerationGuard()
	g.now = func() time.Time { return now }

	release, ok, err := g.TryLock(ctx, "script", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = g.TryLock(ctx, "script", time.Minute)
	assert.False(t, ok, "second holder must be refused")

	release()
	release()

	release2, ok, _ := g.TryLock(ctx, "script", time.Minute)
	assert.True(t, ok)
	release2()
}

func TestTryLockExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewGenerationGuard()
	g.now = func() time.Time { return now }

	staleRelease, ok, _ := g.TryLock(ctx, "script", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = g.TryLock(ctx, "script", time.Second)
	require.True(t, ok, "expired lock can be taken over")

	// old holder releasing must not drop the new holder's lock
	staleRelease()
	_, ok, _ = g.TryLock(ctx, "script", time.Second)
	assert.False(t, ok)
}
