package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/A1X6/saaschat/pkg/models"
)

// LogUsage stores a token usage record. These outlive conversation deletion.
func (s *Store) LogUsage(ctx context.Context, rec models.UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO token_usage_logs (id, user_id, model, input_tokens, output_tokens, total_tokens, input_cost, output_cost, total_cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Model,
		rec.InputTokens, rec.OutputTokens, rec.TotalTokens,
		rec.InputCost, rec.OutputCost, rec.TotalCost, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("log usage: %w", err)
	}
	return nil
}

// UsageSummary aggregates a user's usage by model since a given time.
func (s *Store) UsageSummary(ctx context.Context, userID string, since time.Time) ([]models.UsageSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, model, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(total_tokens), SUM(total_cost)
		 FROM token_usage_logs WHERE user_id = ? AND created_at >= ?
		 GROUP BY user_id, model ORDER BY model`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("usage summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.UsageSummary
	for rows.Next() {
		var u models.UsageSummary
		if err := rows.Scan(&u.UserID, &u.Model, &u.RequestCount, &u.InputTokens, &u.OutputTokens, &u.TotalTokens, &u.TotalCost); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, u)
	}
	return summaries, rows.Err()
}

// TotalTokens returns a user's total token usage since a given time.
func (s *Store) TotalTokens(ctx context.Context, userID string, since time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_tokens), 0) FROM token_usage_logs WHERE user_id = ? AND created_at >= ?`,
		userID, since,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total tokens: %w", err)
	}
	return total, nil
}
