package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginGuardLocksAfterMaxFailures(t *testing.T) {
	g := NewLoginGuard(nil, 3)
	ctx := context.Background()

	g.Fail(ctx, "alice")
	g.Fail(ctx, "Alice ")
	locked, _ := g.Locked(ctx, "alice")
	assert.False(t, locked)

	g.Fail(ctx, "ALICE")
	locked, left := g.Locked(ctx, "alice")
	assert.True(t, locked)
	assert.InDelta(t, time.Minute.Seconds(), left.Seconds(), 1)

	g.Fail(ctx, "alice")
	_, left = g.Locked(ctx, "alice")
	assert.InDelta(t, (5 * time.Minute).Seconds(), left.Seconds(), 1)

	other, _ := g.Locked(ctx, "bob")
	assert.False(t, other)
}

func TestLoginGuardLockExpiresAndResets(t *testing.T) {
	g := NewLoginGuard(nil, 1)
	ctx := context.Background()
	now := time.Now()
	g.now = func() time.Time { return now }

	g.Fail(ctx, "alice")
	locked, _ := g.Locked(ctx, "alice")
	assert.True(t, locked)

	now = now.Add(2 * time.Minute)
	locked, _ = g.Locked(ctx, "alice")
	assert.False(t, locked)

	g.Reset(ctx, "alice")
	g.Fail(ctx, "alice")
	_, left := g.Locked(ctx, "alice")
	assert.Equal(t, time.Minute, left, "reset restarts escalation")
}
