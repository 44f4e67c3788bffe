package engine

import (
	"github.com/lumenlearn/pacer/internal/learner"
	"github.com/lumenlearn/pacer/internal/mastery"
)

// Next-session advisory tags.
const (
	TagTopicMastered = "topic_mastered_move_to_next"
	TagReviewBasics  = "review_fundamentals"
	TagStoryMode     = "try_story_mode_next_session"
	TagChallenge     = "ready_for_challenge_mode"
)

// Tag thresholds.
const (
	reviewScoreMax         = 0.3
	reviewAccuracyMax      = 0.5
	storyEngagementMax     = 0.4
	challengeScoreMin      = 0.6
	challengeAccuracyMin   = 0.8
	challengeEngagementMin = 0.6
)

// Session length planning bands, in minutes.
const (
	sessionBaseMinutes = 15
	sessionMinMinutes  = 5
	sessionMaxMinutes  = 30

	engagedSessionMin   = 0.7
	disengagedBelow     = 0.4
	strongAccuracyMin   = 0.75
	weakAccuracyBelow   = 0.4
	morningStartHour    = 6
	morningEndHour      = 11
	lateEveningFromHour = 20
)

// nextSession combines mastery trend and engagement into advisory tags
// for whatever the learner opens next.
func nextSession(st mastery.State, snap learner.ContextSnapshot) []string {
	var tags []string
	if st.MasteryScore >= mastery.MasteryThreshold {
		tags = append(tags, TagTopicMastered)
	}
	if st.MasteryScore < reviewScoreMax && snap.RecentAccuracy < reviewAccuracyMax {
		tags = append(tags, TagReviewBasics)
	}
	if snap.EngagementLevel < storyEngagementMax {
		tags = append(tags, TagStoryMode)
	}
	if st.MasteryScore >= challengeScoreMin &&
		snap.RecentAccuracy >= challengeAccuracyMin &&
		snap.EngagementLevel >= challengeEngagementMin {
		tags = append(tags, TagChallenge)
	}
	return tags
}

// sessionLength plans how long the next sitting should run. Engaged,
// accurate learners get longer sessions; mornings stretch a little and
// late evenings shrink.
func sessionLength(snap learner.ContextSnapshot) int {
	minutes := sessionBaseMinutes

	if snap.EngagementLevel >= engagedSessionMin {
		minutes += 5
	} else if snap.EngagementLevel < disengagedBelow {
		minutes -= 5
	}
	if snap.RecentAccuracy >= strongAccuracyMin {
		minutes += 5
	} else if snap.RecentAccuracy < weakAccuracyBelow {
		minutes -= 5
	}
	if snap.TimeOfDayHour >= morningStartHour && snap.TimeOfDayHour <= morningEndHour {
		minutes += 2
	} else if snap.TimeOfDayHour >= lateEveningFromHour {
		minutes -= 3
	}

	if minutes < sessionMinMinutes {
		return sessionMinMinutes
	}
	if minutes > sessionMaxMinutes {
		return sessionMaxMinutes
	}
	return minutes
}
