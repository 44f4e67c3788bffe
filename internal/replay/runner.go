package replay

import (
	"context"
	"time"

	"github.com/lumenlearn/pacer/internal/engine"
	"github.com/lumenlearn/pacer/internal/learner"
	"github.com/lumenlearn/pacer/internal/logging"
)

// Runner feeds historical attempts through the coordinator so a rebuilt
// or migrated store ends up in the same state live traffic would have
// produced.
type Runner struct {
	coord *engine.Coordinator
	log   *logging.Logger
}

func NewRunner(coord *engine.Coordinator, log *logging.Logger) *Runner {
	return &Runner{coord: coord, log: log}
}

// Summary describes one replay run.
type Summary struct {
	Applied int `json:"applied"`
	Users   int `json:"users"`
	Topics  int `json:"topics"`
}

// Run applies records in file order. Records without their own timestamp
// are applied at now. The first failing observation aborts the run;
// everything before it stays applied.
func (r *Runner) Run(ctx context.Context, records []Record, now time.Time) (Summary, error) {
	users := make(map[string]struct{})
	topics := make(map[string]struct{})

	var sum Summary
	for _, rec := range records {
		at := now
		if rec.At != nil {
			at = *rec.At
		}
		out := learner.Outcome{
			Correct:            rec.Correct,
			Difficulty:         rec.Difficulty,
			TimeTakenSeconds:   rec.TimeTakenSeconds,
			FrustrationSignals: rec.FrustrationSignals,
		}
		if _, err := r.coord.Observe(ctx, rec.UserID, rec.TopicID, out, at); err != nil {
			return sum, &ErrInvalidRecord{Line: rec.Line, Err: err}
		}
		sum.Applied++
		users[rec.UserID] = struct{}{}
		topics[rec.UserID+"/"+rec.TopicID] = struct{}{}
	}
	sum.Users = len(users)
	sum.Topics = len(topics)

	r.log.Debug("replay complete",
		"applied", sum.Applied, "users", sum.Users, "topics", sum.Topics)
	return sum, nil
}
