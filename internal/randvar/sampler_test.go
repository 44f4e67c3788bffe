package randvar

import (
	"math"
	"testing"
)

func TestUniformRange(t *testing.T) {
	s := New(1)
	for i := 0; i < 10000; i++ {
		u := s.Uniform()
		if u < 0 || u >= 1 {
			t.Fatalf("Uniform() = %v, want [0, 1)", u)
		}
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if got, want := a.Beta(2, 1), b.Beta(2, 1); got != want {
			t.Fatalf("sample %d diverged: %v vs %v", i, got, want)
		}
	}
}

func TestNormalMoments(t *testing.T) {
	s := New(7)
	const n = 100000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		x := s.Normal(0, 1)
		sum += x
		sumSq += x * x
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean) > 0.02 {
		t.Errorf("mean = %v, want ~0", mean)
	}
	if math.Abs(variance-1) > 0.03 {
		t.Errorf("variance = %v, want ~1", variance)
	}
}

func TestNormalShift(t *testing.T) {
	s := New(7)
	const n = 50000
	var sum float64
	for i := 0; i < n; i++ {
		sum += s.Normal(5, 2)
	}
	mean := sum / n
	if math.Abs(mean-5) > 0.05 {
		t.Errorf("mean = %v, want ~5", mean)
	}
}

func TestGammaMean(t *testing.T) {
	tests := []struct {
		name  string
		shape float64
		scale float64
	}{
		{"unit", 1, 1},
		{"shape 2", 2, 1},
		{"scaled", 3, 2},
		{"sub-unit shape", 0.5, 1},
		{"prior-sized", 1.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(11)
			const n = 100000
			var sum float64
			for i := 0; i < n; i++ {
				x := s.Gamma(tt.shape, tt.scale)
				if x < 0 {
					t.Fatalf("Gamma(%v, %v) = %v, want >= 0", tt.shape, tt.scale, x)
				}
				sum += x
			}
			mean := sum / n
			want := tt.shape * tt.scale
			if math.Abs(mean-want) > 0.03*want+0.01 {
				t.Errorf("mean = %v, want ~%v", mean, want)
			}
		})
	}
}

func TestBetaRange(t *testing.T) {
	s := New(3)
	for i := 0; i < 10000; i++ {
		b := s.Beta(2, 1)
		if b < 0 || b > 1 {
			t.Fatalf("Beta(2, 1) = %v, want [0, 1]", b)
		}
	}
}

// Empirical calibration: the sample mean of Beta(a, b) must land within
// 1% absolute of a/(a+b).
func TestBetaCalibration(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
		beta  float64
	}{
		{"easy prior", 2, 1},
		{"medium prior", 1.5, 1.5},
		{"hard prior", 1, 2},
		{"trained arm", 12, 4},
		{"weak evidence", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(99)
			const n = 100000
			var sum float64
			for i := 0; i < n; i++ {
				sum += s.Beta(tt.alpha, tt.beta)
			}
			mean := sum / n
			want := tt.alpha / (tt.alpha + tt.beta)
			if math.Abs(mean-want) > 0.01 {
				t.Errorf("mean = %v, want %v +/- 0.01", mean, want)
			}
		})
	}
}
