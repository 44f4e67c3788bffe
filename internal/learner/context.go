package learner

import "time"

// ContextWindow is the maximum number of recent attempts a snapshot is
// derived from.
const ContextWindow = 10

// Neutral stand-ins used when a learner has no history yet.
const (
	neutralAccuracy = 0.5
	neutralTime     = 30.0
)

// Engagement scoring terms. The base is neutral; habit, active practice,
// and a productive accuracy band raise it, slow answers and late hours
// lower it.
const (
	engagementBase     = 0.5
	streakBonusPerDay  = 0.02
	streakBonusCap     = 0.2
	activeWindowBonus  = 0.1 // at least activeWindowMin attempts in the window
	activeWindowMin    = 6
	flowBonus          = 0.1 // accuracy inside [flowLow, flowHigh]
	flowLow            = 0.6
	flowHigh           = 0.9
	slowAnswerPenalty  = 0.2 // average above slowAnswerSeconds
	slowAnswerSeconds  = 60.0
	lateHourPenalty    = 0.1
	lateHourStart      = 22
	earlyMorningBefore = 6
)

// ContextSnapshot is the per-call view of a learner the bandit and the
// coordinator condition on. Derived fresh for every recommendation or
// observation; never persisted standalone.
type ContextSnapshot struct {
	TopicMastery       float64 `json:"topicMastery"`
	RecentAccuracy     float64 `json:"recentAccuracy"`
	AvgTimePerQuestion float64 `json:"avgTimePerQuestion"`
	TotalAttempts      int     `json:"totalAttempts"`
	TimeOfDayHour      int     `json:"timeOfDayHour"`
	EngagementLevel    float64 `json:"engagementLevel"`
	StreakDays         int     `json:"streakDays"`
	ConfidenceInterval float64 `json:"confidenceInterval"`
}

// BuildSnapshot derives the attempt-driven context fields from the most
// recent history window. TopicMastery, ConfidenceInterval, and
// TotalAttempts come from the caller's mastery state and are left zero
// here.
func BuildSnapshot(recent []Attempt, streakDays int, now time.Time) ContextSnapshot {
	if len(recent) > ContextWindow {
		recent = recent[:ContextWindow]
	}
	hour := now.Hour()
	acc := Accuracy(recent)
	avg := AvgTime(recent)

	return ContextSnapshot{
		RecentAccuracy:     acc,
		AvgTimePerQuestion: avg,
		TimeOfDayHour:      hour,
		EngagementLevel:    engagement(len(recent), acc, avg, streakDays, hour),
		StreakDays:         streakDays,
	}
}

// Accuracy is the correct fraction over the window, neutral when empty.
func Accuracy(attempts []Attempt) float64 {
	if len(attempts) == 0 {
		return neutralAccuracy
	}
	correct := 0
	for _, a := range attempts {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(attempts))
}

// AvgTime is the mean response time over the window, neutral when empty.
func AvgTime(attempts []Attempt) float64 {
	if len(attempts) == 0 {
		return neutralTime
	}
	var total float64
	for _, a := range attempts {
		total += a.TimeTakenSeconds
	}
	return total / float64(len(attempts))
}

func engagement(windowSize int, accuracy, avgTime float64, streakDays, hour int) float64 {
	score := engagementBase

	habit := float64(streakDays) * streakBonusPerDay
	if habit > streakBonusCap {
		habit = streakBonusCap
	}
	score += habit

	if windowSize >= activeWindowMin {
		score += activeWindowBonus
	}
	if accuracy >= flowLow && accuracy <= flowHigh {
		score += flowBonus
	}
	if avgTime > slowAnswerSeconds {
		score -= slowAnswerPenalty
	}
	if hour >= lateHourStart || hour < earlyMorningBefore {
		score -= lateHourPenalty
	}

	return clamp(score, 0, 1)
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
