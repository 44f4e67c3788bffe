package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lumenlearn/pacer/internal/learner"
)

type attemptRow struct {
	ID               string  `db:"id"`
	UserID           string  `db:"user_id"`
	TopicID          string  `db:"topic_id"`
	Correct          bool    `db:"correct"`
	Difficulty       float64 `db:"difficulty"`
	TimeTakenSeconds float64 `db:"time_taken_seconds"`
	AtMs             int64   `db:"at_ms"`
}

func (r attemptRow) attempt() learner.Attempt {
	return learner.Attempt{
		ID:               r.ID,
		UserID:           r.UserID,
		TopicID:          r.TopicID,
		Correct:          r.Correct,
		Difficulty:       r.Difficulty,
		TimeTakenSeconds: r.TimeTakenSeconds,
		At:               time.UnixMilli(r.AtMs).UTC(),
	}
}

type attemptRepo struct {
	db *sqlx.DB
}

func (r *attemptRepo) Record(ctx context.Context, a learner.Attempt) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	row := attemptRow{
		ID:               a.ID,
		UserID:           a.UserID,
		TopicID:          a.TopicID,
		Correct:          a.Correct,
		Difficulty:       a.Difficulty,
		TimeTakenSeconds: a.TimeTakenSeconds,
		AtMs:             a.At.UnixMilli(),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO attempts (id, user_id, topic_id, correct, difficulty, time_taken_seconds, at_ms)
		VALUES (:id, :user_id, :topic_id, :correct, :difficulty, :time_taken_seconds, :at_ms)`,
		row)
	if err != nil {
		return fmt.Errorf("record attempt for %s/%s: %w", a.UserID, a.TopicID, err)
	}
	return nil
}

func (r *attemptRepo) Recent(ctx context.Context, userID, topicID string, limit int) ([]learner.Attempt, error) {
	var rows []attemptRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM attempts
		WHERE user_id = ? AND topic_id = ?
		ORDER BY at_ms DESC LIMIT ?`,
		userID, topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("load attempts for %s/%s: %w", userID, topicID, err)
	}

	out := make([]learner.Attempt, len(rows))
	for i, row := range rows {
		out[i] = row.attempt()
	}
	return out, nil
}

func (r *attemptRepo) StreakDays(ctx context.Context, userID string, now time.Time) (int, error) {
	var days []string
	err := r.db.SelectContext(ctx, &days, `
		SELECT DISTINCT date(at_ms / 1000, 'unixepoch') AS day
		FROM attempts WHERE user_id = ?
		ORDER BY day DESC LIMIT 366`,
		userID)
	if err != nil {
		return 0, fmt.Errorf("load practice days for %s: %w", userID, err)
	}
	return streakFromDays(days, now), nil
}

// streakFromDays counts consecutive practice days walking a descending
// list of distinct YYYY-MM-DD day strings. The run must reach now's UTC
// date or the day before, otherwise the streak is broken.
func streakFromDays(days []string, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	latest, err := time.ParseInLocation(time.DateOnly, days[0], time.UTC)
	if err != nil {
		return 0
	}
	today := now.UTC().Truncate(24 * time.Hour)
	if latest.Before(today.AddDate(0, 0, -1)) {
		return 0
	}

	streak := 1
	expect := latest.AddDate(0, 0, -1)
	for _, day := range days[1:] {
		d, err := time.ParseInLocation(time.DateOnly, day, time.UTC)
		if err != nil || !d.Equal(expect) {
			break
		}
		streak++
		expect = expect.AddDate(0, 0, -1)
	}
	return streak
}
