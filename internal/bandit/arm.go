package bandit

// Arm is one discrete difficulty tier the bandit selects among.
type Arm string

const (
	ArmEasy   Arm = "easy"
	ArmMedium Arm = "medium"
	ArmHard   Arm = "hard"
)

// Arms lists every arm in selection order. Equal Thompson samples
// resolve to the earliest arm, a deterministic but arbitrary tie-break
// that sampling makes negligible in practice.
var Arms = []Arm{ArmEasy, ArmMedium, ArmHard}

// Difficulty is the nominal difficulty an arm serves, before
// exploration noise.
func (a Arm) Difficulty() float64 {
	switch a {
	case ArmEasy:
		return 0.3
	case ArmMedium:
		return 0.6
	case ArmHard:
		return 0.9
	}
	return 0.6
}

// ArmFor maps an observed difficulty back to the serving arm.
func ArmFor(difficulty float64) Arm {
	switch {
	case difficulty <= 0.4:
		return ArmEasy
	case difficulty <= 0.7:
		return ArmMedium
	default:
		return ArmHard
	}
}
