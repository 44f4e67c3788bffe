package randvar

import (
	"math"
	"math/rand/v2"
)

// Sampler generates uniform, normal, gamma, and beta variates from a
// single underlying source. All methods are total for positive
// parameters; behavior is undefined for non-positive shape values.
// Not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

// New returns a Sampler with a fixed seed, for deterministic tests and
// replayable simulations.
func New(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed))}
}

// NewRandom returns a Sampler seeded from the process entropy source.
func NewRandom() *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Uniform returns a variate in [0, 1).
func (s *Sampler) Uniform() float64 {
	return s.rng.Float64()
}

// Normal returns a normally distributed variate via the Box-Muller
// transform on two independent uniforms.
func (s *Sampler) Normal(mean, stddev float64) float64 {
	// 1-Float64() lies in (0, 1], keeping the log argument positive.
	u1 := 1 - s.rng.Float64()
	u2 := s.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stddev*z
}

// Gamma returns a gamma-distributed variate using the Marsaglia-Tsang
// method. Shapes below 1 are lifted with the boost identity
// gamma(a) = gamma(a+1) * U^(1/a).
func (s *Sampler) Gamma(shape, scale float64) float64 {
	if shape < 1 {
		return s.Gamma(shape+1, scale) * math.Pow(s.Uniform(), 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.Normal(0, 1)
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.Uniform()
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Beta returns a beta-distributed variate in [0, 1], computed as the
// ratio gamma(a) / (gamma(a) + gamma(b)).
func (s *Sampler) Beta(alpha, beta float64) float64 {
	x := s.Gamma(alpha, 1)
	y := s.Gamma(beta, 1)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}
