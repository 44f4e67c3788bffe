package bandit

import "github.com/lumenlearn/pacer/internal/learner"

// Context thresholds for the prior nudges.
const (
	lowMastery    = 0.3
	highMastery   = 0.7
	lowAccuracy   = 0.5
	highAccuracy  = 0.8
	slowAnswering = 45.0
	lowEngagement = 0.4
	lateHour      = 15
)

// Nudge magnitudes, from dominant to secondary.
const (
	nudgeStrong = 1.0
	nudgeLarge  = 0.8
	nudgeMedium = 0.5
	nudgeSmall  = 0.3
)

// adjustments computes the signed prior shift per arm for a context.
// This is a linear heuristic scoring function: five independent rules
// add to easy and subtract from hard (or the reverse), with medium
// taking only small secondary shifts. The sums are unbounded for
// extreme contexts; thresholds and magnitudes are long-standing tuning
// values kept exactly as they are.
func adjustments(ctx learner.ContextSnapshot) map[Arm]float64 {
	adj := map[Arm]float64{ArmEasy: 0, ArmMedium: 0, ArmHard: 0}

	if ctx.TopicMastery < lowMastery {
		adj[ArmEasy] += nudgeStrong
		adj[ArmMedium] += nudgeSmall
		adj[ArmHard] -= nudgeStrong
	} else if ctx.TopicMastery > highMastery {
		adj[ArmHard] += nudgeStrong
		adj[ArmMedium] += nudgeSmall
		adj[ArmEasy] -= nudgeStrong
	}

	if ctx.RecentAccuracy < lowAccuracy {
		adj[ArmEasy] += nudgeLarge
		adj[ArmHard] -= nudgeLarge
	} else if ctx.RecentAccuracy > highAccuracy {
		adj[ArmHard] += nudgeLarge
		adj[ArmEasy] -= nudgeLarge
	}

	if ctx.AvgTimePerQuestion > slowAnswering {
		adj[ArmEasy] += nudgeMedium
		adj[ArmHard] -= nudgeMedium
	}

	if ctx.EngagementLevel < lowEngagement {
		adj[ArmEasy] += nudgeMedium
		adj[ArmHard] -= nudgeMedium
	}

	// Afternoon onward, tired learners get a gentler mix.
	if ctx.TimeOfDayHour >= lateHour {
		adj[ArmEasy] += nudgeSmall
		adj[ArmHard] -= nudgeSmall
	}

	return adj
}
