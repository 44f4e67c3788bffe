package mastery

// Thresholds for the advisory strength/improvement lists. These feed
// learner-facing copy only; no other component reads them.
const (
	strongScoreMin     = 0.6
	strongAccuracyMin  = 0.75
	tightConfidenceMax = 0.15
	weakScoreMax       = 0.4
	weakAccuracyMax    = 0.5
	elevatedRateMin    = 0.25
	accuracySampleMin  = 5
)

// PredictedSuccessCap keeps the success forecast honest; nothing is ever
// promised above 95%.
const PredictedSuccessCap = 0.95

// Insight is the learner-facing read of a mastery state.
type Insight struct {
	Level                 Level    `json:"level"`
	Confidence            float64  `json:"confidence"`
	Accuracy              float64  `json:"accuracy"`
	PredictedSuccessRate  float64  `json:"predictedSuccessRate"`
	RecommendedDifficulty float64  `json:"recommendedDifficulty"`
	Strengths             []string `json:"strengths"`
	ImprovementAreas      []string `json:"improvementAreas"`
}

// Insights derives the advisory view of a state. Pure: two calls on the
// same state yield identical output. The recommended difficulty targets
// slightly above current mastery, pulled back while uncertainty is
// still wide.
func Insights(s State) Insight {
	predicted := s.MasteryScore + (1-s.ConfidenceInterval)*0.1
	if predicted > PredictedSuccessCap {
		predicted = PredictedSuccessCap
	}

	recommended := clamp(s.MasteryScore+0.1-s.ConfidenceInterval*0.2, 0.1, 0.9)

	return Insight{
		Level:                 LevelFor(s.MasteryScore),
		Confidence:            1 - s.ConfidenceInterval,
		Accuracy:              s.Accuracy(),
		PredictedSuccessRate:  predicted,
		RecommendedDifficulty: recommended,
		Strengths:             strengths(s),
		ImprovementAreas:      improvementAreas(s),
	}
}

func strengths(s State) []string {
	var out []string
	if s.MasteryScore >= strongScoreMin {
		out = append(out, "solid command of the material")
	}
	if s.AttemptsCount >= accuracySampleMin && s.Accuracy() >= strongAccuracyMin {
		out = append(out, "consistently accurate answers")
	}
	if s.ConfidenceInterval <= tightConfidenceMax {
		out = append(out, "stable performance across sessions")
	}
	return out
}

func improvementAreas(s State) []string {
	var out []string
	if s.MasteryScore < weakScoreMax {
		out = append(out, "core concepts need more practice")
	}
	if s.AttemptsCount >= accuracySampleMin && s.Accuracy() < weakAccuracyMax {
		out = append(out, "accuracy is below half on recent work")
	}
	if s.LearningRate >= elevatedRateMin {
		out = append(out, "frequent recent mistakes, ease back on difficulty")
	}
	return out
}
