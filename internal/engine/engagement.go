package engine

import "github.com/lumenlearn/pacer/internal/learner"

// Engagement statuses, most severe first.
const (
	StatusFrustrated = "frustrated"
	StatusFatigued   = "fatigued"
	StatusBored      = "bored"
	StatusEngaged    = "engaged"
)

// Rule thresholds for the observe-side assessment.
const (
	frustrationSignalMax = 3
	fatigueSlowSeconds   = 60.0
	fatigueAccuracyMax   = 0.3
	boredomAccuracyMin   = 0.9
	boredomFastSeconds   = 15.0
)

// Engagement is the intervention advice produced after an observation.
type Engagement struct {
	Status       string `json:"status"`
	Intervention string `json:"intervention,omitempty"`
}

// assessEngagement applies the rule set with frustration ranked above
// fatigue and fatigue above boredom when several rules fire at once.
func assessEngagement(snap learner.ContextSnapshot, frustrationSignals int) Engagement {
	switch {
	case frustrationSignals > frustrationSignalMax:
		return Engagement{Status: StatusFrustrated, Intervention: "offer_easier_questions_and_encouragement"}
	case snap.AvgTimePerQuestion > fatigueSlowSeconds || snap.RecentAccuracy < fatigueAccuracyMax:
		return Engagement{Status: StatusFatigued, Intervention: "suggest_break"}
	case snap.RecentAccuracy > boredomAccuracyMin && snap.AvgTimePerQuestion < boredomFastSeconds:
		return Engagement{Status: StatusBored, Intervention: "increase_challenge"}
	default:
		return Engagement{Status: StatusEngaged}
	}
}
