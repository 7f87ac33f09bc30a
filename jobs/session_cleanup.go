package jobs

import (
	"context"
	"time"

	"geniustrading/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SessionPurger deletes session rows whose expiry has passed.
type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler runs the background maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func NewScheduler() *Scheduler {
	log := logger.For("jobs")
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cronLogger{log}), cron.WithChain(cron.Recover(cronLogger{log}))),
		log:  log,
	}
}

// AddSessionCleanup schedules PurgeExpiredSessions. schedule uses cron syntax
// or descriptors such as "@hourly".
func (s *Scheduler) AddSessionCleanup(schedule string, sessions SessionPurger) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := PurgeExpiredSessions(ctx, sessions, time.Now()); err != nil {
			s.log.Error().Err(err).Msg("session cleanup failed")
		}
	})
	return err
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func PurgeExpiredSessions(ctx context.Context, sessions SessionPurger, now time.Time) (int64, error) {
	n, err := sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		l := logger.For("jobs")
		l.Info().Int64("deleted", n).Msg("expired sessions purged")
	}
	return n, nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{ log zerolog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
