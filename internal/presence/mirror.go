package presence

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fluentlink/fluentlink-be/internal/models"
)

// Outcome reports what a best-effort mirror attempt did. It is a result, not
// an error: callers log it and move on, the request never fails on it.
type Outcome struct {
	Skipped bool
	Err     error
}

// Failed reports whether the mirror attempt errored.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// SyncRecorder records mirror state on the user record so the background
// syncer can retry failures.
type SyncRecorder interface {
	MarkPresenceSynced(id string, synced bool) error
}

// Mirror pushes user identities to the presence collaborator.
type Mirror struct {
	client   Client
	recorder SyncRecorder
}

// NewMirror creates a Mirror. A nil client means the collaborator is not
// configured and every sync is skipped.
func NewMirror(client Client, recorder SyncRecorder) *Mirror {
	return &Mirror{client: client, recorder: recorder}
}

// SyncUser mirrors one user's {id, name, image} to the presence service.
func (m *Mirror) SyncUser(ctx context.Context, user models.User) Outcome {
	if m.client == nil {
		return Outcome{Skipped: true}
	}

	err := m.client.UpsertUser(ctx, User{ID: user.ID, Name: user.FullName, Image: user.ProfilePic})
	if markErr := m.recorder.MarkPresenceSynced(user.ID, err == nil); markErr != nil {
		log.Error().Err(markErr).Str("user_id", user.ID).Msg("Failed to record presence sync state")
	}
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{}
}
