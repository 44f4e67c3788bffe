package engine_test

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/engine"
	"github.com/lumenlearn/pacer/internal/learner"
	"github.com/lumenlearn/pacer/internal/logging"
	"github.com/lumenlearn/pacer/internal/mastery"
	"github.com/lumenlearn/pacer/internal/randvar"
	"github.com/lumenlearn/pacer/internal/store"
)

// Mid-morning on a Saturday; inside the morning session band, outside
// the late-hour engagement penalty.
var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestCoordinator(seed uint64) (*engine.Coordinator, *store.Memory) {
	backend := store.NewMemory()
	c := engine.New(backend, bandit.NewPolicy(randvar.New(seed)), logging.Nop())
	return c, backend
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecommendFreshLearner(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCoordinator(1)

	rec, err := c.Recommend(ctx, "alice", "fractions", testNow)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if rec.RecommendedDifficulty < bandit.MinDifficulty || rec.RecommendedDifficulty > bandit.MaxDifficulty {
		t.Errorf("difficulty %v outside [%v, %v]",
			rec.RecommendedDifficulty, bandit.MinDifficulty, bandit.MaxDifficulty)
	}
	if !almostEqual(rec.ContextFactors.EngagementLevel, 0.5) {
		t.Errorf("engagement = %v, want neutral 0.5", rec.ContextFactors.EngagementLevel)
	}
	if rec.ContextFactors.FatigueDetected {
		t.Error("fatigue detected for a fresh learner")
	}
	if got := rec.ContextFactors.OptimalSessionLengthMinutes; got != 17 {
		t.Errorf("session length = %d, want 17 (base 15 + morning 2)", got)
	}
	if rec.MasteryInsights.Level != mastery.LevelNovice {
		t.Errorf("level = %q, want novice", rec.MasteryInsights.Level)
	}
	if !almostEqual(rec.MasteryInsights.PredictedSuccessRate, 0.17) {
		t.Errorf("predicted success = %v, want 0.17", rec.MasteryInsights.PredictedSuccessRate)
	}
}

func TestObserveUpdatesBothModelsAndHistory(t *testing.T) {
	ctx := context.Background()
	c, backend := newTestCoordinator(2)

	obs, err := c.Observe(ctx, "alice", "fractions", learner.Outcome{
		Correct:          true,
		Difficulty:       0.5,
		TimeTakenSeconds: 30,
	}, testNow)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}

	if !almostEqual(obs.Mastery.MasteryScore, 0.235) {
		t.Errorf("mastery score = %v, want 0.235", obs.Mastery.MasteryScore)
	}
	if obs.Mastery.AttemptsCount != 1 || obs.Mastery.CorrectCount != 1 {
		t.Errorf("counters = %d/%d, want 1/1", obs.Mastery.AttemptsCount, obs.Mastery.CorrectCount)
	}
	if obs.MasteryLevel != mastery.LevelBeginning {
		t.Errorf("level = %q, want beginning", obs.MasteryLevel)
	}

	st, err := backend.Mastery().LoadOrCreate(ctx, "alice", "fractions")
	if err != nil {
		t.Fatalf("reload mastery: %v", err)
	}
	if !almostEqual(st.MasteryScore, obs.Mastery.MasteryScore) {
		t.Errorf("persisted score %v != returned %v", st.MasteryScore, obs.Mastery.MasteryScore)
	}

	m, err := backend.Bandits().Load(ctx, "alice")
	if err != nil {
		t.Fatalf("load bandit: %v", err)
	}
	if m == nil {
		t.Fatal("bandit model not persisted")
	}
	if m.TotalInteractions != 1 {
		t.Errorf("interactions = %d, want 1", m.TotalInteractions)
	}
	// Medium arm credited (1.5+1), then the 0.995 decay pass.
	if !almostEqual(m.Arms[bandit.ArmMedium].Alpha, 2.4875) {
		t.Errorf("medium alpha = %v, want 2.4875", m.Arms[bandit.ArmMedium].Alpha)
	}

	recent, err := backend.Attempts().Recent(ctx, "alice", "fractions", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || !recent[0].Correct {
		t.Fatalf("recorded attempts = %+v, want one correct", recent)
	}
}

func TestObserveRejectsInvalidOutcome(t *testing.T) {
	ctx := context.Background()
	c, backend := newTestCoordinator(3)

	_, err := c.Observe(ctx, "alice", "fractions", learner.Outcome{
		Correct:          true,
		Difficulty:       0.5,
		TimeTakenSeconds: 0,
	}, testNow)
	if !errors.Is(err, learner.ErrInvalidOutcome) {
		t.Fatalf("err = %v, want ErrInvalidOutcome", err)
	}

	// Nothing was touched on the rejected path.
	all, err := backend.Mastery().All(ctx, "alice")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("mastery rows created on invalid outcome: %v", all)
	}
	m, err := backend.Bandits().Load(ctx, "alice")
	if err != nil {
		t.Fatalf("load bandit: %v", err)
	}
	if m != nil {
		t.Error("bandit model created on invalid outcome")
	}
}

func TestObserveEngagementAssessment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		out          learner.Outcome
		wantStatus   string
		intervention bool
	}{
		{
			name: "frustration outranks fatigue",
			out: learner.Outcome{
				Correct: false, Difficulty: 0.9,
				TimeTakenSeconds: 70, FrustrationSignals: 5,
			},
			wantStatus:   engine.StatusFrustrated,
			intervention: true,
		},
		{
			name: "slow and wrong is fatigue",
			out: learner.Outcome{
				Correct: false, Difficulty: 0.9, TimeTakenSeconds: 70,
			},
			wantStatus:   engine.StatusFatigued,
			intervention: true,
		},
		{
			name: "fast and perfect is boredom",
			out: learner.Outcome{
				Correct: true, Difficulty: 0.3, TimeTakenSeconds: 5,
			},
			wantStatus:   engine.StatusBored,
			intervention: true,
		},
		{
			name: "ordinary answer is engaged",
			out: learner.Outcome{
				Correct: true, Difficulty: 0.5, TimeTakenSeconds: 30,
			},
			wantStatus: engine.StatusEngaged,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCoordinator(4)
			obs, err := c.Observe(ctx, "alice", "fractions", tt.out, testNow)
			if err != nil {
				t.Fatalf("Observe: %v", err)
			}
			if obs.Engagement.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", obs.Engagement.Status, tt.wantStatus)
			}
			if tt.intervention && obs.Engagement.Intervention == "" {
				t.Error("missing intervention advice")
			}
			if !tt.intervention && obs.Engagement.Intervention != "" {
				t.Errorf("unexpected intervention %q", obs.Engagement.Intervention)
			}
		})
	}
}

func TestObserveNextSessionTags(t *testing.T) {
	ctx := context.Background()

	t.Run("mastered topic earns the move-on tag", func(t *testing.T) {
		c, backend := newTestCoordinator(5)
		err := backend.Mastery().Save(ctx, "alice", "fractions", mastery.State{
			MasteryScore:       0.85,
			LearningRate:       0.05,
			ForgettingRate:     0.01,
			ConfidenceInterval: 0.05,
			AttemptsCount:      50,
			CorrectCount:       45,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}

		obs, err := c.Observe(ctx, "alice", "fractions", learner.Outcome{
			Correct: true, Difficulty: 0.9, TimeTakenSeconds: 20,
		}, testNow)
		if err != nil {
			t.Fatalf("Observe: %v", err)
		}
		if !slices.Contains(obs.NextSession, engine.TagTopicMastered) {
			t.Errorf("tags %v missing %q", obs.NextSession, engine.TagTopicMastered)
		}
	})

	t.Run("struggling learner is sent back to fundamentals", func(t *testing.T) {
		c, _ := newTestCoordinator(6)
		obs, err := c.Observe(ctx, "bram", "fractions", learner.Outcome{
			Correct: false, Difficulty: 0.5, TimeTakenSeconds: 40,
		}, testNow)
		if err != nil {
			t.Fatalf("Observe: %v", err)
		}
		if !slices.Contains(obs.NextSession, engine.TagReviewBasics) {
			t.Errorf("tags %v missing %q", obs.NextSession, engine.TagReviewBasics)
		}
	})

	t.Run("disengaged late-night learner gets story mode", func(t *testing.T) {
		c, _ := newTestCoordinator(7)
		lateNight := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
		obs, err := c.Observe(ctx, "cato", "fractions", learner.Outcome{
			Correct: false, Difficulty: 0.5, TimeTakenSeconds: 70,
		}, lateNight)
		if err != nil {
			t.Fatalf("Observe: %v", err)
		}
		if !slices.Contains(obs.NextSession, engine.TagStoryMode) {
			t.Errorf("tags %v missing %q", obs.NextSession, engine.TagStoryMode)
		}
	})

	t.Run("accurate engaged learner on a strong topic is challenge ready", func(t *testing.T) {
		c, backend := newTestCoordinator(8)
		err := backend.Mastery().Save(ctx, "dara", "fractions", mastery.State{
			MasteryScore:       0.7,
			LearningRate:       0.08,
			ForgettingRate:     0.02,
			ConfidenceInterval: 0.1,
			AttemptsCount:      30,
			CorrectCount:       26,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		// A week of daily practice plus in-band accuracy keeps
		// engagement well over the challenge bar.
		base := testNow.AddDate(0, 0, -6)
		for day := 0; day < 6; day++ {
			at := base.AddDate(0, 0, day)
			correct := day != 0 // 7/8 in-window accuracy after the observe below
			recordObserve(t, c, "dara", "fractions", learner.Outcome{
				Correct: correct, Difficulty: 0.6, TimeTakenSeconds: 25,
			}, at)
		}
		recordObserve(t, c, "dara", "fractions", learner.Outcome{
			Correct: true, Difficulty: 0.6, TimeTakenSeconds: 25,
		}, testNow)

		obs, err := c.Observe(ctx, "dara", "fractions", learner.Outcome{
			Correct: true, Difficulty: 0.7, TimeTakenSeconds: 22,
		}, testNow)
		if err != nil {
			t.Fatalf("Observe: %v", err)
		}
		if !slices.Contains(obs.NextSession, engine.TagChallenge) {
			t.Errorf("tags %v missing %q", obs.NextSession, engine.TagChallenge)
		}
	})
}

func recordObserve(t *testing.T, c *engine.Coordinator, userID, topicID string, out learner.Outcome, at time.Time) {
	t.Helper()
	if _, err := c.Observe(context.Background(), userID, topicID, out, at); err != nil {
		t.Fatalf("Observe(%s, %s): %v", userID, topicID, err)
	}
}

func TestRecommendDetectsFatigue(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCoordinator(9)

	for i := 0; i < 3; i++ {
		recordObserve(t, c, "alice", "fractions", learner.Outcome{
			Correct: true, Difficulty: 0.5, TimeTakenSeconds: 80,
		}, testNow.Add(time.Duration(i)*time.Minute))
	}

	rec, err := c.Recommend(ctx, "alice", "fractions", testNow.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !rec.ContextFactors.FatigueDetected {
		t.Error("fatigue not detected at 80s average response time")
	}
	// Slow answers drag engagement under 0.4 (-5) while perfect window
	// accuracy adds 5 and the morning band adds 2.
	if got := rec.ContextFactors.OptimalSessionLengthMinutes; got != 17 {
		t.Errorf("session length = %d, want 17", got)
	}
}

func TestCoordinatorDeterministicForSeed(t *testing.T) {
	ctx := context.Background()

	run := func() []float64 {
		c, _ := newTestCoordinator(42)
		var out []float64
		for i := 0; i < 5; i++ {
			rec, err := c.Recommend(ctx, "alice", "fractions", testNow)
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			out = append(out, rec.RecommendedDifficulty)
			recordObserve(t, c, "alice", "fractions", learner.Outcome{
				Correct:          i%2 == 0,
				Difficulty:       rec.RecommendedDifficulty,
				TimeTakenSeconds: 25,
			}, testNow.Add(time.Duration(i)*time.Minute))
		}
		return out
	}

	first, second := run(), run()
	if !slices.Equal(first, second) {
		t.Errorf("same seed diverged: %v vs %v", first, second)
	}
}
