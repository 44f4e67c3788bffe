package simulation

import (
	"math"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/randvar"
)

// Answer model parameters. A learner's chance of answering correctly is
// a logistic curve over the gap between latent ability and question
// difficulty.
const (
	logisticSlope = 4.0

	minResponseSeconds = 2.0
	maxResponseSeconds = 110.0
)

// Profile describes a synthetic learner driven through the engine.
type Profile struct {
	Name        string  `json:"name"`
	UserID      string  `json:"userId"`
	Ability     float64 `json:"ability"`     // latent skill in [0,1]
	LearnGain   float64 `json:"learnGain"`   // ability gained per correct answer
	Speed       float64 `json:"speed"`       // mean response seconds at matched difficulty
	Frustration float64 `json:"frustration"` // chance of visible frustration after repeat failures
}

// DefaultProfiles covers the three learner shapes the tuning work cares
// about: one who should race to hard questions, one who should settle at
// medium, and one the engine must not push.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "quick", UserID: "sim-quick", Ability: 0.7, LearnGain: 0.04, Speed: 12, Frustration: 0.1},
		{Name: "steady", UserID: "sim-steady", Ability: 0.45, LearnGain: 0.025, Speed: 25, Frustration: 0.3},
		{Name: "struggling", UserID: "sim-struggling", Ability: 0.2, LearnGain: 0.015, Speed: 45, Frustration: 0.7},
	}
}

// learnerState is a profile plus its mutable trajectory.
type learnerState struct {
	Profile
	ability       float64
	failStreak    int
	turns         int
	correct       int
	difficultySum float64
	masteredTurn  int
	pulls         map[bandit.Arm]int
	trajectory    []Turn
}

func newLearnerState(p Profile) *learnerState {
	return &learnerState{Profile: p, ability: p.Ability, pulls: make(map[bandit.Arm]int)}
}

// answer rolls one question at the given difficulty.
func (l *learnerState) answer(difficulty float64, rng *randvar.Sampler) (correct bool, seconds float64, signals int) {
	pCorrect := 1 / (1 + math.Exp(-logisticSlope*(l.ability-difficulty)))
	correct = rng.Uniform() < pCorrect

	// Questions above the learner's level take longer; noise keeps the
	// engine's time features honest.
	seconds = l.Speed*(1+0.8*(difficulty-l.ability)) + rng.Normal(0, l.Speed*0.1)
	if seconds < minResponseSeconds {
		seconds = minResponseSeconds
	}
	if seconds > maxResponseSeconds {
		seconds = maxResponseSeconds
	}

	if correct {
		l.ability += l.LearnGain * (1 - l.ability)
		l.failStreak = 0
	} else {
		l.ability -= 0.2 * l.LearnGain * l.ability
		l.failStreak++
		if l.failStreak >= 2 && rng.Uniform() < l.Frustration {
			signals = l.failStreak
		}
	}

	l.turns++
	if correct {
		l.correct++
	}
	l.difficultySum += difficulty
	return correct, seconds, signals
}
