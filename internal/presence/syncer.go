package presence

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/fluentlink/fluentlink-be/internal/models"
)

// UserLister exposes the users whose last mirror attempt failed.
type UserLister interface {
	GetUnsyncedUsers(limit int) ([]models.User, error)
}

const syncBatchSize = 50

// Syncer retries presence mirroring in the background for users whose push
// failed on the request path.
type Syncer struct {
	mirror   *Mirror
	users    UserLister
	schedule cron.Schedule
	done     chan bool
}

// NewSyncer creates a Syncer waking on the given cron expression, e.g.
// "@every 5m" or "*/10 * * * *".
func NewSyncer(mirror *Mirror, users UserLister, scheduleExpr string) (*Syncer, error) {
	schedule, err := cron.ParseStandard(scheduleExpr)
	if err != nil {
		return nil, err
	}
	return &Syncer{
		mirror:   mirror,
		users:    users,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the syncer loop.
func (s *Syncer) Run() {
	log.Info().Msg("Starting presence syncer...")
	for {
		timer := time.NewTimer(time.Until(s.schedule.Next(time.Now())))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping presence syncer.")
			return
		case <-timer.C:
			s.syncPending()
		}
	}
}

// Stop halts the syncer.
func (s *Syncer) Stop() {
	s.done <- true
}

func (s *Syncer) syncPending() {
	users, err := s.users.GetUnsyncedUsers(syncBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("Presence syncer: failed to list unsynced users")
		return
	}

	for _, user := range users {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		outcome := s.mirror.SyncUser(ctx, user)
		cancel()

		if outcome.Skipped {
			// Collaborator not configured; nothing to retry.
			return
		}
		if outcome.Failed() {
			log.Warn().Err(outcome.Err).Str("user_id", user.ID).Msg("Presence re-sync failed")
		}
	}
}
