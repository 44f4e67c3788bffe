package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lumenlearn/pacer/internal/mastery"
)

type masteryRow struct {
	UserID             string  `db:"user_id"`
	TopicID            string  `db:"topic_id"`
	MasteryScore       float64 `db:"mastery_score"`
	LearningRate       float64 `db:"learning_rate"`
	ForgettingRate     float64 `db:"forgetting_rate"`
	ConfidenceInterval float64 `db:"confidence_interval"`
	AttemptsCount      int     `db:"attempts_count"`
	CorrectCount       int     `db:"correct_count"`
	TimeSpentSeconds   float64 `db:"time_spent_seconds"`
	LastAttemptMs      *int64  `db:"last_attempt_ms"`
	MasteryAchievedMs  *int64  `db:"mastery_achieved_ms"`
	UpdatedMs          int64   `db:"updated_ms"`
}

func (r masteryRow) state() mastery.State {
	return mastery.State{
		MasteryScore:       r.MasteryScore,
		LearningRate:       r.LearningRate,
		ForgettingRate:     r.ForgettingRate,
		ConfidenceInterval: r.ConfidenceInterval,
		AttemptsCount:      r.AttemptsCount,
		CorrectCount:       r.CorrectCount,
		TimeSpentSeconds:   r.TimeSpentSeconds,
		LastAttemptAt:      msToTime(r.LastAttemptMs),
		MasteryAchievedAt:  msToTime(r.MasteryAchievedMs),
	}
}

func newMasteryRow(userID, topicID string, st mastery.State) masteryRow {
	return masteryRow{
		UserID:             userID,
		TopicID:            topicID,
		MasteryScore:       st.MasteryScore,
		LearningRate:       st.LearningRate,
		ForgettingRate:     st.ForgettingRate,
		ConfidenceInterval: st.ConfidenceInterval,
		AttemptsCount:      st.AttemptsCount,
		CorrectCount:       st.CorrectCount,
		TimeSpentSeconds:   st.TimeSpentSeconds,
		LastAttemptMs:      timeToMs(st.LastAttemptAt),
		MasteryAchievedMs:  timeToMs(st.MasteryAchievedAt),
		UpdatedMs:          time.Now().UnixMilli(),
	}
}

func msToTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

func timeToMs(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

type masteryRepo struct {
	db *sqlx.DB
}

func (r *masteryRepo) LoadOrCreate(ctx context.Context, userID, topicID string) (mastery.State, error) {
	var row masteryRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM mastery_states WHERE user_id = ? AND topic_id = ?", userID, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		st := mastery.NewState()
		if err := r.Save(ctx, userID, topicID, st); err != nil {
			return mastery.State{}, err
		}
		return st, nil
	}
	if err != nil {
		return mastery.State{}, fmt.Errorf("load mastery %s/%s: %w", userID, topicID, err)
	}
	return row.state(), nil
}

func (r *masteryRepo) Save(ctx context.Context, userID, topicID string, st mastery.State) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO mastery_states (
			user_id, topic_id, mastery_score, learning_rate, forgetting_rate,
			confidence_interval, attempts_count, correct_count,
			time_spent_seconds, last_attempt_ms, mastery_achieved_ms, updated_ms
		) VALUES (
			:user_id, :topic_id, :mastery_score, :learning_rate, :forgetting_rate,
			:confidence_interval, :attempts_count, :correct_count,
			:time_spent_seconds, :last_attempt_ms, :mastery_achieved_ms, :updated_ms
		)
		ON CONFLICT (user_id, topic_id) DO UPDATE SET
			mastery_score       = excluded.mastery_score,
			learning_rate       = excluded.learning_rate,
			forgetting_rate     = excluded.forgetting_rate,
			confidence_interval = excluded.confidence_interval,
			attempts_count      = excluded.attempts_count,
			correct_count       = excluded.correct_count,
			time_spent_seconds  = excluded.time_spent_seconds,
			last_attempt_ms     = excluded.last_attempt_ms,
			mastery_achieved_ms = excluded.mastery_achieved_ms,
			updated_ms          = excluded.updated_ms`,
		newMasteryRow(userID, topicID, st))
	if err != nil {
		return fmt.Errorf("save mastery %s/%s: %w", userID, topicID, err)
	}
	return nil
}

func (r *masteryRepo) All(ctx context.Context, userID string) (map[string]mastery.State, error) {
	var rows []masteryRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM mastery_states WHERE user_id = ? ORDER BY topic_id", userID)
	if err != nil {
		return nil, fmt.Errorf("list mastery for %s: %w", userID, err)
	}

	out := make(map[string]mastery.State, len(rows))
	for _, row := range rows {
		out[row.TopicID] = row.state()
	}
	return out, nil
}
