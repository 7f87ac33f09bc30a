package jobs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"geniustrading/logger"
	"geniustrading/models"
	"geniustrading/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetOutput(io.Discard, zerolog.Disabled)
}

type failingPurger struct{}

func (failingPurger) DeleteExpiredSessions(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func TestPurgeExpiredSessions(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	now := time.Now()
	require.NoError(t, store.CreateSession(ctx, &models.Session{ID: "gone", UserID: 1, ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, store.CreateSession(ctx, &models.Session{ID: "kept", UserID: 1, ExpiresAt: now.Add(time.Hour)}))

	n, err := PurgeExpiredSessions(ctx, store, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetSession(ctx, "gone")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetSession(ctx, "kept")
	assert.NoError(t, err)
}

func TestPurgeExpiredSessionsError(t *testing.T) {
	_, err := PurgeExpiredSessions(context.Background(), failingPurger{}, time.Now())
	assert.Error(t, err)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler()
	assert.Error(t, s.AddSessionCleanup("not a schedule", storage.NewMemory()))
	assert.NoError(t, s.AddSessionCleanup("@hourly", storage.NewMemory()))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
