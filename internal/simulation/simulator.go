package simulation

import (
	"context"
	"time"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/engine"
	"github.com/lumenlearn/pacer/internal/learner"
	"github.com/lumenlearn/pacer/internal/logging"
	"github.com/lumenlearn/pacer/internal/mastery"
	"github.com/lumenlearn/pacer/internal/randvar"
)

// simTopic is the single drilled topic; the simulation probes difficulty
// adaptation, not topic switching.
const simTopic = "drill"

// turnsPerDay splits turns into daily sittings so streak and
// time-of-day features see realistic values.
const (
	turnsPerDay = 12
	turnSpacing = 90 * time.Second
	sittingHour = 16
)

// Simulator drives synthetic learners through the coordinator and
// reports how the difficulty adapted to each of them.
type Simulator struct {
	coord   *engine.Coordinator
	sampler *randvar.Sampler
	log     *logging.Logger
	start   time.Time
}

func New(coord *engine.Coordinator, sampler *randvar.Sampler, log *logging.Logger, start time.Time) *Simulator {
	return &Simulator{coord: coord, sampler: sampler, log: log, start: start}
}

// Turn is one question cycle of one learner.
type Turn struct {
	Turn       int     `json:"turn"`
	Difficulty float64 `json:"difficulty"`
	Correct    bool    `json:"correct"`
	Seconds    float64 `json:"seconds"`
	Mastery    float64 `json:"mastery"`
	Engagement string  `json:"engagement"`
}

// LearnerResult summarises one learner's full run. ArmPulls counts how
// often each difficulty tier was served.
type LearnerResult struct {
	Profile        string         `json:"profile"`
	UserID         string         `json:"userId"`
	StartAbility   float64        `json:"startAbility"`
	FinalAbility   float64        `json:"finalAbility"`
	FinalMastery   float64        `json:"finalMastery"`
	CorrectRate    float64        `json:"correctRate"`
	MeanDifficulty float64        `json:"meanDifficulty"`
	ArmPulls       map[string]int `json:"armPulls"`
	MasteredAtTurn int            `json:"masteredAtTurn,omitempty"`
	Trajectory     []Turn         `json:"trajectory,omitempty"`
}

// Result is a full simulation run.
type Result struct {
	Turns    int             `json:"turns"`
	Learners []LearnerResult `json:"learners"`
}

// clock maps a turn index to a timestamp: turnsPerDay questions per
// afternoon sitting, one sitting per day.
func (s *Simulator) clock(turn int) time.Time {
	day := turn / turnsPerDay
	within := turn % turnsPerDay
	sitting := time.Date(s.start.Year(), s.start.Month(), s.start.Day(), sittingHour, 0, 0, 0, time.UTC)
	return sitting.AddDate(0, 0, day).Add(time.Duration(within) * turnSpacing)
}

// Run drives every profile for the given number of turns. Learners run
// interleaved turn by turn, the way a shared deployment would see them.
func (s *Simulator) Run(ctx context.Context, profiles []Profile, turns int) (Result, error) {
	states := make([]*learnerState, len(profiles))
	for i, p := range profiles {
		states[i] = newLearnerState(p)
	}

	for turn := 0; turn < turns; turn++ {
		at := s.clock(turn)
		for _, l := range states {
			rec, err := s.coord.Recommend(ctx, l.UserID, simTopic, at)
			if err != nil {
				return Result{}, err
			}

			l.pulls[bandit.ArmFor(rec.RecommendedDifficulty)]++
			correct, seconds, signals := l.answer(rec.RecommendedDifficulty, s.sampler)
			obs, err := s.coord.Observe(ctx, l.UserID, simTopic, learner.Outcome{
				Correct:            correct,
				Difficulty:         rec.RecommendedDifficulty,
				TimeTakenSeconds:   seconds,
				FrustrationSignals: signals,
			}, at)
			if err != nil {
				return Result{}, err
			}

			if l.masteredTurn == 0 && obs.Mastery.MasteryScore >= mastery.MasteryThreshold {
				l.masteredTurn = turn + 1
			}
			l.trajectory = append(l.trajectory, Turn{
				Turn:       turn + 1,
				Difficulty: rec.RecommendedDifficulty,
				Correct:    correct,
				Seconds:    seconds,
				Mastery:    obs.Mastery.MasteryScore,
				Engagement: obs.Engagement.Status,
			})
		}
	}

	out := Result{Turns: turns, Learners: make([]LearnerResult, len(states))}
	for i, l := range states {
		res := LearnerResult{
			Profile:        l.Name,
			UserID:         l.UserID,
			StartAbility:   l.Ability,
			FinalAbility:   l.ability,
			MasteredAtTurn: l.masteredTurn,
			Trajectory:     l.trajectory,
			ArmPulls:       make(map[string]int, len(l.pulls)),
		}
		for arm, n := range l.pulls {
			res.ArmPulls[string(arm)] = n
		}
		if len(l.trajectory) > 0 {
			res.FinalMastery = l.trajectory[len(l.trajectory)-1].Mastery
		}
		if l.turns > 0 {
			res.CorrectRate = float64(l.correct) / float64(l.turns)
			res.MeanDifficulty = l.difficultySum / float64(l.turns)
		}
		out.Learners[i] = res

		s.log.Debug("simulated learner finished",
			"profile", l.Name, "finalMastery", res.FinalMastery,
			"correctRate", res.CorrectRate, "meanDifficulty", res.MeanDifficulty)
	}
	return out, nil
}
