package learner

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Attempt is one answered question, the unit of history the context
// derivation and the replay surface work from. Append-only.
type Attempt struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	TopicID          string    `json:"topicId"`
	Correct          bool      `json:"correct"`
	Difficulty       float64   `json:"difficulty"`
	TimeTakenSeconds float64   `json:"timeTakenSeconds"`
	At               time.Time `json:"at"`
}

// NewAttempt builds an Attempt record from an observed outcome.
func NewAttempt(userID, topicID string, out Outcome, now time.Time) Attempt {
	return Attempt{
		ID:               uuid.New().String(),
		UserID:           userID,
		TopicID:          topicID,
		Correct:          out.Correct,
		Difficulty:       out.Difficulty,
		TimeTakenSeconds: out.TimeTakenSeconds,
		At:               now,
	}
}

// Outcome is what the caller reports after a learner answers a question.
// FrustrationSignals counts external cues (rapid retries, hint spam)
// collected by the hosting surface; the engine only thresholds it.
type Outcome struct {
	Correct            bool
	Difficulty         float64
	TimeTakenSeconds   float64
	FrustrationSignals int
}

// ErrInvalidOutcome marks outcomes rejected at the boundary before any
// state is touched.
var ErrInvalidOutcome = errors.New("invalid outcome")

// Validate rejects outcomes the update formulas cannot meaningfully
// absorb. Minor drift inside [0,1] is tolerated by the clamps downstream;
// these checks catch caller bugs, not rounding.
func (o Outcome) Validate() error {
	if o.TimeTakenSeconds <= 0 {
		return fmt.Errorf("%w: time taken must be positive, got %v", ErrInvalidOutcome, o.TimeTakenSeconds)
	}
	if o.Difficulty < 0 || o.Difficulty > 1 {
		return fmt.Errorf("%w: difficulty must be in [0,1], got %v", ErrInvalidOutcome, o.Difficulty)
	}
	if o.FrustrationSignals < 0 {
		return fmt.Errorf("%w: frustration signals must be non-negative, got %d", ErrInvalidOutcome, o.FrustrationSignals)
	}
	return nil
}
