package mastery

import "time"

// Default parameters for a freshly created state. Learners start near
// zero mastery with a fast learning rate and wide uncertainty.
const (
	DefaultMasteryScore   = 0.1
	DefaultLearningRate   = 0.15
	DefaultForgettingRate = 0.05
	DefaultConfidence     = 0.3
)

// Hard bounds every update clamps back into.
const (
	MinScore        = 0.01
	MaxScore        = 0.99
	MinLearningRate = 0.05
	MaxLearningRate = 0.3
	MinConfidence   = 0.05
	MaxConfidence   = 0.5
)

// MasteryThreshold is the score at which a topic counts as mastered.
const MasteryThreshold = 0.8

// State is the per-(user, topic) mastery estimate. ConfidenceInterval
// shrinks as evidence accumulates; lower means more certain. Counters
// are append-only. MasteryAchievedAt is set once and never cleared,
// even if the score later drops below the threshold.
type State struct {
	MasteryScore       float64    `json:"masteryScore"`
	LearningRate       float64    `json:"learningRate"`
	ForgettingRate     float64    `json:"forgettingRate"`
	ConfidenceInterval float64    `json:"confidenceInterval"`
	AttemptsCount      int        `json:"attemptsCount"`
	CorrectCount       int        `json:"correctCount"`
	TimeSpentSeconds   float64    `json:"timeSpentSeconds"`
	LastAttemptAt      *time.Time `json:"lastAttemptAt,omitempty"`
	MasteryAchievedAt  *time.Time `json:"masteryAchievedAt,omitempty"`
}

// NewState returns the default state for a first interaction. Creation
// is create-if-absent; the store boundary guarantees a repeat
// initialization never overwrites progress.
func NewState() State {
	return State{
		MasteryScore:       DefaultMasteryScore,
		LearningRate:       DefaultLearningRate,
		ForgettingRate:     DefaultForgettingRate,
		ConfidenceInterval: DefaultConfidence,
	}
}

// Accuracy is the lifetime correct fraction, 0 before any attempts.
func (s State) Accuracy() float64 {
	if s.AttemptsCount == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.AttemptsCount)
}

// Mastered reports whether the mastery threshold was ever reached.
func (s State) Mastered() bool {
	return s.MasteryAchievedAt != nil
}

// Level buckets a mastery score into a learner-facing label.
type Level string

const (
	LevelNovice     Level = "novice"
	LevelBeginning  Level = "beginning"
	LevelDeveloping Level = "developing"
	LevelProficient Level = "proficient"
	LevelExpert     Level = "expert"
)

// LevelFor maps a score to its level band.
func LevelFor(score float64) Level {
	switch {
	case score < 0.2:
		return LevelNovice
	case score < 0.4:
		return LevelBeginning
	case score < 0.6:
		return LevelDeveloping
	case score < 0.8:
		return LevelProficient
	default:
		return LevelExpert
	}
}
