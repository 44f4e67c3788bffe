package mastery

import (
	"math"
	"time"
)

// Evidence weighting for a single answer. Difficulty scales the swing
// around the midpoint; response time is measured against a 30s
// reference, bounded so outliers cannot dominate.
const (
	difficultySwing = 0.3
	referenceTime   = 30.0
	minTimeAdj      = 0.5
	maxTimeAdj      = 1.5
)

// Rate dynamics. Success cools the learning rate and tightens
// confidence; errors widen confidence and speed recovery. Errors cost
// double the nominal forgetting rate, scaled by current mastery.
const (
	confidenceShrink = 0.95
	confidenceGrow   = 1.1
	rateCooldown     = 0.98
	rateRecovery     = 1.02
	errorCost        = 2.0
)

const msPerDay = 24 * 60 * 60 * 1000

// Update applies one observed answer to the state and returns the
// result. The input state is not modified. The same value is what gets
// persisted; callers must serialize updates per (user, topic) since two
// concurrent updates racing on stale reads would drop evidence.
func Update(s State, correct bool, difficulty, timeTakenSeconds float64, now time.Time) State {
	difficultyAdj := 1 + (difficulty-0.5)*difficultySwing
	timeAdj := clamp(referenceTime/timeTakenSeconds, minTimeAdj, maxTimeAdj)
	effectiveRate := s.LearningRate * difficultyAdj * timeAdj

	if correct {
		gain := effectiveRate * (1 - s.MasteryScore)
		s.MasteryScore = math.Min(MaxScore, s.MasteryScore+gain)
		s.ConfidenceInterval = math.Max(MinConfidence, s.ConfidenceInterval*confidenceShrink)
		s.LearningRate = math.Max(MinLearningRate, s.LearningRate*rateCooldown)
	} else {
		loss := s.ForgettingRate * s.MasteryScore * errorCost
		s.MasteryScore = math.Max(MinScore, s.MasteryScore-loss)
		s.ConfidenceInterval = math.Min(MaxConfidence, s.ConfidenceInterval*confidenceGrow)
		s.LearningRate = math.Min(MaxLearningRate, s.LearningRate*rateRecovery)
	}

	// Elapsed-time decay applies regardless of correctness. First
	// attempts have nothing to decay from.
	if s.LastAttemptAt != nil {
		if elapsed := now.Sub(*s.LastAttemptAt); elapsed > 0 {
			decay := s.ForgettingRate * (float64(elapsed.Milliseconds()) / msPerDay)
			s.MasteryScore = math.Max(MinScore, s.MasteryScore-decay)
		}
	}

	s.MasteryScore = round4(s.MasteryScore)
	s.LearningRate = round4(s.LearningRate)
	s.ForgettingRate = round4(s.ForgettingRate)
	s.ConfidenceInterval = round4(s.ConfidenceInterval)

	s.AttemptsCount++
	if correct {
		s.CorrectCount++
	}
	s.TimeSpentSeconds += timeTakenSeconds
	attemptAt := now
	s.LastAttemptAt = &attemptAt

	if s.MasteryAchievedAt == nil && s.MasteryScore >= MasteryThreshold {
		achievedAt := now
		s.MasteryAchievedAt = &achievedAt
	}

	return s
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
