package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/learner"
)

type banditRow struct {
	UserID            string `db:"user_id"`
	Arms              string `db:"arms"`
	TotalInteractions int    `db:"total_interactions"`
	ContextFeatures   string `db:"context_features"`
	LastUpdatedMs     *int64 `db:"last_updated_ms"`
	UpdatedMs         int64  `db:"updated_ms"`
}

func (r banditRow) model() (*bandit.Model, error) {
	m := &bandit.Model{TotalInteractions: r.TotalInteractions}
	if err := json.Unmarshal([]byte(r.Arms), &m.Arms); err != nil {
		return nil, fmt.Errorf("decode bandit arms for %s: %w", r.UserID, err)
	}
	if r.ContextFeatures != "" {
		var ctx learner.ContextSnapshot
		if err := json.Unmarshal([]byte(r.ContextFeatures), &ctx); err != nil {
			return nil, fmt.Errorf("decode bandit context for %s: %w", r.UserID, err)
		}
		m.ContextFeatures = ctx
	}
	if r.LastUpdatedMs != nil {
		m.LastUpdated = time.UnixMilli(*r.LastUpdatedMs).UTC()
	}
	return m, nil
}

func newBanditRow(userID string, m *bandit.Model) (banditRow, error) {
	arms, err := json.Marshal(m.Arms)
	if err != nil {
		return banditRow{}, fmt.Errorf("encode bandit arms for %s: %w", userID, err)
	}
	features, err := json.Marshal(m.ContextFeatures)
	if err != nil {
		return banditRow{}, fmt.Errorf("encode bandit context for %s: %w", userID, err)
	}

	row := banditRow{
		UserID:            userID,
		Arms:              string(arms),
		TotalInteractions: m.TotalInteractions,
		ContextFeatures:   string(features),
		UpdatedMs:         time.Now().UnixMilli(),
	}
	if !m.LastUpdated.IsZero() {
		ms := m.LastUpdated.UnixMilli()
		row.LastUpdatedMs = &ms
	}
	return row, nil
}

type banditRepo struct {
	db *sqlx.DB
}

func (r *banditRepo) Load(ctx context.Context, userID string) (*bandit.Model, error) {
	var row banditRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM bandit_models WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bandit for %s: %w", userID, err)
	}
	return row.model()
}

func (r *banditRepo) LoadOrCreate(ctx context.Context, userID string) (*bandit.Model, error) {
	m, err := r.Load(ctx, userID)
	if err != nil || m != nil {
		return m, err
	}
	m = bandit.NewModel()
	if err := r.Save(ctx, userID, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *banditRepo) Save(ctx context.Context, userID string, m *bandit.Model) error {
	row, err := newBanditRow(userID, m)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO bandit_models (
			user_id, arms, total_interactions, context_features, last_updated_ms, updated_ms
		) VALUES (
			:user_id, :arms, :total_interactions, :context_features, :last_updated_ms, :updated_ms
		)
		ON CONFLICT (user_id) DO UPDATE SET
			arms               = excluded.arms,
			total_interactions = excluded.total_interactions,
			context_features   = excluded.context_features,
			last_updated_ms    = excluded.last_updated_ms,
			updated_ms         = excluded.updated_ms`,
		row)
	if err != nil {
		return fmt.Errorf("save bandit for %s: %w", userID, err)
	}
	return nil
}
