package bandit

import (
	"github.com/lumenlearn/pacer/internal/learner"
	"github.com/lumenlearn/pacer/internal/randvar"
)

// Recommendation bounds and exploration noise around an arm's nominal
// difficulty.
const (
	MinDifficulty    = 0.1
	MaxDifficulty    = 1.0
	explorationNoise = 0.1
)

// pseudoCountFloor keeps the sampled Beta total after a hostile
// contextual shift drives the adjusted alpha to zero or below.
const pseudoCountFloor = 0.01

// Policy couples Thompson Sampling to a variate source. It never
// mutates models; all evidence flows through Model.Update.
type Policy struct {
	sampler *randvar.Sampler
}

// NewPolicy returns a policy drawing from the given sampler.
func NewPolicy(sampler *randvar.Sampler) *Policy {
	return &Policy{sampler: sampler}
}

// Recommend draws one sample per arm from Beta(alpha+shift, beta) and
// plays the argmax. The contextual shift perturbs the success
// pseudo-count only, so a small shift tilts rather than overrides the
// historical evidence. The returned difficulty is the winning arm's
// nominal value with uniform noise in [-0.1, +0.1], clamped to
// [MinDifficulty, MaxDifficulty].
func (p *Policy) Recommend(m *Model, ctx learner.ContextSnapshot) (Arm, float64) {
	adj := adjustments(ctx)

	best := Arms[0]
	bestSample := -1.0
	for _, arm := range Arms {
		params := m.Arms[arm]
		alpha := params.Alpha + adj[arm]
		if alpha < pseudoCountFloor {
			alpha = pseudoCountFloor
		}
		sample := p.sampler.Beta(alpha, params.Beta)
		if sample > bestSample {
			best, bestSample = arm, sample
		}
	}

	noise := (p.sampler.Uniform()*2 - 1) * explorationNoise
	return best, clamp(best.Difficulty()+noise, MinDifficulty, MaxDifficulty)
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
