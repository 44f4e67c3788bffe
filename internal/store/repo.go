package store

import (
	"context"
	"time"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/learner"
	"github.com/lumenlearn/pacer/internal/mastery"
)

// MasteryRepo manages per-(user, topic) mastery states.
type MasteryRepo interface {
	// LoadOrCreate returns the stored state, persisting the defaults on
	// first touch. A repeat call never overwrites existing progress.
	LoadOrCreate(ctx context.Context, userID, topicID string) (mastery.State, error)

	// Save replaces the state for (user, topic).
	Save(ctx context.Context, userID, topicID string, st mastery.State) error

	// All returns every stored state for a user, keyed by topic.
	All(ctx context.Context, userID string) (map[string]mastery.State, error)
}

// BanditRepo manages per-user bandit models.
type BanditRepo interface {
	// Load returns nil when the user has no model yet; update callers
	// use it so an out-of-order update stays a no-op.
	Load(ctx context.Context, userID string) (*bandit.Model, error)

	// LoadOrCreate returns the stored model, persisting the starting
	// priors on first touch.
	LoadOrCreate(ctx context.Context, userID string) (*bandit.Model, error)

	// Save replaces the model for the user.
	Save(ctx context.Context, userID string, m *bandit.Model) error
}

// AttemptRepo is the append-only attempt history the context snapshots
// are derived from.
type AttemptRepo interface {
	// Record appends one attempt.
	Record(ctx context.Context, a learner.Attempt) error

	// Recent returns up to limit attempts for (user, topic), newest
	// first.
	Recent(ctx context.Context, userID, topicID string, limit int) ([]learner.Attempt, error)

	// StreakDays counts consecutive practice days (UTC) ending today or
	// yesterday relative to now; 0 when the streak is broken.
	StreakDays(ctx context.Context, userID string, now time.Time) (int, error)
}

// Backend is the full persistence surface a deployment wires into the
// coordinator and the command layer.
type Backend interface {
	Mastery() MasteryRepo
	Bandits() BanditRepo
	Attempts() AttemptRepo

	// Reset deletes all state for one user.
	Reset(ctx context.Context, userID string) error

	// ResetAll deletes all state for all users.
	ResetAll(ctx context.Context) error

	Close() error
}
