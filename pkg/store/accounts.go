package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/A1X6/saaschat/pkg/models"
)

// CreateAccount inserts a new account. Zero-valued budget fields take the
// schema defaults; a zero FreeTokensLimit gets the standard allowance.
func (s *Store) CreateAccount(ctx context.Context, acct models.Account) error {
	if acct.FreeTokensLimit == 0 {
		acct.FreeTokensLimit = 1000000
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, subscription_status, credits_balance, credits_allocated, credits_used, free_tokens_used, free_tokens_limit, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.Name, acct.SubscriptionStatus,
		acct.CreditsBalance, acct.CreditsAllocated, acct.CreditsUsed,
		acct.FreeTokensUsed, acct.FreeTokensLimit, now, now,
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetAccount loads an account snapshot.
func (s *Store) GetAccount(ctx context.Context, userID string) (models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, subscription_status, credits_balance, credits_allocated, credits_used, free_tokens_used, free_tokens_limit, created_at, updated_at
		 FROM accounts WHERE id = ?`,
		userID,
	).Scan(&a.ID, &a.Name, &a.SubscriptionStatus, &a.CreditsBalance, &a.CreditsAllocated, &a.CreditsUsed, &a.FreeTokensUsed, &a.FreeTokensLimit, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// SetSubscriptionStatus updates the billing status for an account.
func (s *Store) SetSubscriptionStatus(ctx context.Context, userID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET subscription_status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("set subscription status: %w", err)
	}
	return requireRow(res)
}

// ApplyDebit persists a proposed debit computed by the entitlement policy.
func (s *Store) ApplyDebit(ctx context.Context, userID string, debit models.ProposedDebit) error {
	now := time.Now().UTC()
	switch debit.Kind {
	case models.DebitCredits:
		res, err := s.db.ExecContext(ctx,
			`UPDATE accounts SET credits_balance = ?, credits_used = ?, updated_at = ? WHERE id = ?`,
			debit.NewCreditsBalance, debit.NewCreditsUsed, now, userID,
		)
		if err != nil {
			return fmt.Errorf("apply credits debit: %w", err)
		}
		return requireRow(res)
	case models.DebitFreeTokens:
		res, err := s.db.ExecContext(ctx,
			`UPDATE accounts SET free_tokens_used = ?, updated_at = ? WHERE id = ?`,
			debit.NewFreeTokensUsed, now, userID,
		)
		if err != nil {
			return fmt.Errorf("apply free-token debit: %w", err)
		}
		return requireRow(res)
	default:
		return nil
	}
}

// SetCredits sets both the balance and allocated amount, as on subscription
// activation or plan change.
func (s *Store) SetCredits(ctx context.Context, userID string, amount float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET credits_balance = ?, credits_allocated = ?, updated_at = ? WHERE id = ?`,
		amount, amount, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("set credits: %w", err)
	}
	return requireRow(res)
}

// ResetCredits restores the balance to the allocated amount and zeroes the
// usage counter, as on a new billing cycle.
func (s *Store) ResetCredits(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET credits_balance = credits_allocated, credits_used = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("reset credits: %w", err)
	}
	return requireRow(res)
}

// ResetAllCredits resets credits for every active subscriber.
func (s *Store) ResetAllCredits(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET credits_balance = credits_allocated, credits_used = 0, updated_at = ? WHERE subscription_status = ?`,
		time.Now().UTC(), models.SubscriptionActive,
	)
	if err != nil {
		return 0, fmt.Errorf("reset all credits: %w", err)
	}
	return res.RowsAffected()
}

// SetFreeTokensLimit changes the free-token allowance for an account.
func (s *Store) SetFreeTokensLimit(ctx context.Context, userID string, limit int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET free_tokens_limit = ?, updated_at = ? WHERE id = ?`,
		limit, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("set free tokens limit: %w", err)
	}
	return requireRow(res)
}

// ResetFreeTokens zeroes one account's free-token usage.
func (s *Store) ResetFreeTokens(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET free_tokens_used = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("reset free tokens: %w", err)
	}
	return requireRow(res)
}

// ResetAllFreeTokens zeroes free-token usage for every account, as on the
// monthly reset.
func (s *Store) ResetAllFreeTokens(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET free_tokens_used = 0, updated_at = ?`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("reset all free tokens: %w", err)
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
