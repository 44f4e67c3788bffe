package engine

import (
	"context"
	"time"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/learner"
	"github.com/lumenlearn/pacer/internal/logging"
	"github.com/lumenlearn/pacer/internal/mastery"
	"github.com/lumenlearn/pacer/internal/store"
)

// fatigueTimeSeconds marks the average response time above which the
// recommend path flags fatigue.
const fatigueTimeSeconds = 45.0

// Coordinator runs the two operations the quiz platform calls: Recommend
// before a question is served, Observe after it is answered. It glues the
// mastery tracker, the difficulty bandit, and the attempt history.
type Coordinator struct {
	mastery  store.MasteryRepo
	bandits  store.BanditRepo
	attempts store.AttemptRepo
	policy   *bandit.Policy
	log      *logging.Logger
}

func New(backend store.Backend, policy *bandit.Policy, log *logging.Logger) *Coordinator {
	return &Coordinator{
		mastery:  backend.Mastery(),
		bandits:  backend.Bandits(),
		attempts: backend.Attempts(),
		policy:   policy,
		log:      log,
	}
}

// ContextFactors summarises the learner state behind a recommendation.
type ContextFactors struct {
	EngagementLevel             float64 `json:"engagementLevel"`
	FatigueDetected             bool    `json:"fatigueDetected"`
	OptimalSessionLengthMinutes int     `json:"optimalSessionLengthMinutes"`
}

// Recommendation is the result of Recommend.
type Recommendation struct {
	UserID                string          `json:"userId"`
	TopicID               string          `json:"topicId"`
	RecommendedDifficulty float64         `json:"recommendedDifficulty"`
	MasteryInsights       mastery.Insight `json:"masteryInsights"`
	ContextFactors        ContextFactors  `json:"contextFactors"`
}

// Observation is the result of Observe.
type Observation struct {
	UserID       string        `json:"userId"`
	TopicID      string        `json:"topicId"`
	Mastery      mastery.State `json:"mastery"`
	MasteryLevel mastery.Level `json:"masteryLevel"`
	Engagement   Engagement    `json:"engagement"`
	NextSession  []string      `json:"nextSessionRecommendations"`
}

// snapshot derives the context for one call, folding the mastery state
// into the attempt-driven fields.
func (c *Coordinator) snapshot(ctx context.Context, userID, topicID string, st mastery.State, now time.Time) (learner.ContextSnapshot, []learner.Attempt, error) {
	recent, err := c.attempts.Recent(ctx, userID, topicID, learner.ContextWindow)
	if err != nil {
		return learner.ContextSnapshot{}, nil, err
	}
	streak, err := c.attempts.StreakDays(ctx, userID, now)
	if err != nil {
		return learner.ContextSnapshot{}, nil, err
	}

	snap := learner.BuildSnapshot(recent, streak, now)
	snap.TopicMastery = st.MasteryScore
	snap.ConfidenceInterval = st.ConfidenceInterval
	snap.TotalAttempts = st.AttemptsCount
	return snap, recent, nil
}

// Recommend picks the next question difficulty for a learner on a topic.
// First contact creates default state; no outcome evidence is folded in.
func (c *Coordinator) Recommend(ctx context.Context, userID, topicID string, now time.Time) (Recommendation, error) {
	st, err := c.mastery.LoadOrCreate(ctx, userID, topicID)
	if err != nil {
		return Recommendation{}, err
	}
	model, err := c.bandits.LoadOrCreate(ctx, userID)
	if err != nil {
		return Recommendation{}, err
	}
	snap, _, err := c.snapshot(ctx, userID, topicID, st, now)
	if err != nil {
		return Recommendation{}, err
	}

	arm, difficulty := c.policy.Recommend(model, snap)
	c.log.Debug("recommended difficulty",
		"userId", userID, "topicId", topicID,
		"arm", string(arm), "difficulty", difficulty,
		"engagement", snap.EngagementLevel)

	return Recommendation{
		UserID:                userID,
		TopicID:               topicID,
		RecommendedDifficulty: difficulty,
		MasteryInsights:       mastery.Insights(st),
		ContextFactors: ContextFactors{
			EngagementLevel:             snap.EngagementLevel,
			FatigueDetected:             snap.AvgTimePerQuestion > fatigueTimeSeconds,
			OptimalSessionLengthMinutes: sessionLength(snap),
		},
	}, nil
}

// Observe folds one answered question into both learner models, records
// the attempt, and assesses how the session is going.
func (c *Coordinator) Observe(ctx context.Context, userID, topicID string, out learner.Outcome, now time.Time) (Observation, error) {
	if err := out.Validate(); err != nil {
		return Observation{}, err
	}

	st, err := c.mastery.LoadOrCreate(ctx, userID, topicID)
	if err != nil {
		return Observation{}, err
	}
	model, err := c.bandits.LoadOrCreate(ctx, userID)
	if err != nil {
		return Observation{}, err
	}
	snap, recent, err := c.snapshot(ctx, userID, topicID, st, now)
	if err != nil {
		return Observation{}, err
	}

	// Both learners see the same context snapshot for this outcome.
	model.Update(out.Correct, out.Difficulty, snap, now)
	updated := mastery.Update(st, out.Correct, out.Difficulty, out.TimeTakenSeconds, now)

	if err := c.bandits.Save(ctx, userID, model); err != nil {
		return Observation{}, err
	}
	if err := c.mastery.Save(ctx, userID, topicID, updated); err != nil {
		return Observation{}, err
	}
	attempt := learner.NewAttempt(userID, topicID, out, now)
	if err := c.attempts.Record(ctx, attempt); err != nil {
		return Observation{}, err
	}

	// Assessments run on the window including the attempt just observed.
	window := append([]learner.Attempt{attempt}, recent...)
	streak, err := c.attempts.StreakDays(ctx, userID, now)
	if err != nil {
		return Observation{}, err
	}
	post := learner.BuildSnapshot(window, streak, now)
	post.TopicMastery = updated.MasteryScore
	post.ConfidenceInterval = updated.ConfidenceInterval
	post.TotalAttempts = updated.AttemptsCount

	obs := Observation{
		UserID:       userID,
		TopicID:      topicID,
		Mastery:      updated,
		MasteryLevel: mastery.LevelFor(updated.MasteryScore),
		Engagement:   assessEngagement(post, out.FrustrationSignals),
		NextSession:  nextSession(updated, post),
	}
	c.log.Debug("observed outcome",
		"userId", userID, "topicId", topicID,
		"correct", out.Correct, "difficulty", out.Difficulty,
		"masteryScore", updated.MasteryScore,
		"engagementStatus", obs.Engagement.Status)
	return obs, nil
}
