package bandit

import (
	"math"
	"time"

	"github.com/lumenlearn/pacer/internal/learner"
)

// decayFactor shrinks all pseudo-counts on every update so stale
// evidence loses weight and the model stays responsive to drift.
const decayFactor = 0.995

// ArmParams is the Beta posterior over one arm's success probability.
// Alpha counts successes, Beta failures, both floored at 1.
type ArmParams struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// Mean is the posterior mean success rate.
func (p ArmParams) Mean() float64 {
	return p.Alpha / (p.Alpha + p.Beta)
}

// Model is one learner's bandit state across all arms. ContextFeatures
// holds the snapshot seen at the last update, for inspection only.
type Model struct {
	Arms              map[Arm]ArmParams       `json:"arms"`
	TotalInteractions int                     `json:"totalInteractions"`
	ContextFeatures   learner.ContextSnapshot `json:"contextFeatures"`
	LastUpdated       time.Time               `json:"lastUpdated"`
}

// NewModel returns the asymmetric starting priors: easier content is
// assumed to land until evidence says otherwise.
func NewModel() *Model {
	return &Model{
		Arms: map[Arm]ArmParams{
			ArmEasy:   {Alpha: 2, Beta: 1},
			ArmMedium: {Alpha: 1.5, Beta: 1.5},
			ArmHard:   {Alpha: 1, Beta: 2},
		},
	}
}

// Update folds one observed outcome into the model: the played arm's
// posterior absorbs the result, then every arm decays toward the floor.
// A nil or uninitialized model is a no-op; an update before any
// recommend is an ordering bug upstream and must not break a live
// session.
func (m *Model) Update(correct bool, actualDifficulty float64, ctx learner.ContextSnapshot, now time.Time) {
	if m == nil || m.Arms == nil {
		return
	}

	arm := ArmFor(actualDifficulty)
	params := m.Arms[arm]
	if correct {
		params.Alpha++
	} else {
		params.Beta++
	}
	m.Arms[arm] = params

	for _, a := range Arms {
		p := m.Arms[a]
		p.Alpha = math.Max(1, p.Alpha*decayFactor)
		p.Beta = math.Max(1, p.Beta*decayFactor)
		m.Arms[a] = p
	}

	m.ContextFeatures = ctx
	m.TotalInteractions++
	m.LastUpdated = now
}
