// Package entitlement decides whether a user may call a given model and which
// budget is debited afterward. Both decisions are pure functions over an
// account snapshot; persistent writes belong to the store. Callers must run
// the check-then-settle sequence under per-user mutual exclusion to avoid
// double-spending from simultaneous requests.
package entitlement

import (
	"errors"
	"fmt"

	"github.com/A1X6/saaschat/pkg/models"
)

// DeniedError is a policy denial with a user-facing reason. It is an expected
// outcome, not a fault.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

// IsDenied reports whether err is a policy denial.
func IsDenied(err error) bool {
	var d *DeniedError
	return errors.As(err, &d)
}

// Authorize checks, before any provider call, whether the account may use the
// model. Returns nil or a *DeniedError.
//
// Rules in order: unsubscribed users are denied paid models outright and free
// models once the free-token allowance is exhausted; trial users get free
// models only, unlimited; active subscribers need a positive credit balance
// for paid models and get free models unlimited.
func Authorize(acct models.Account, model models.AIModel) error {
	switch {
	case acct.Unsubscribed():
		if !model.IsFree() {
			return &DeniedError{Reason: "Subscribe to access paid AI models. Free users can only use free models."}
		}
		if acct.FreeTokensUsed >= acct.FreeTokensLimit {
			return &DeniedError{Reason: fmt.Sprintf(
				"You have used all %d free tokens. Subscribe to get unlimited access to free models and credits for paid models.",
				acct.FreeTokensLimit,
			)}
		}
	case acct.Trialing():
		if !model.IsFree() {
			return &DeniedError{Reason: "You are on a trial period and can only use free models. Upgrade to access paid models."}
		}
	default: // active subscription
		if !model.IsFree() && acct.CreditsBalance <= 0 {
			return &DeniedError{Reason: "You have no credits remaining. You can still use free models unlimited or upgrade your plan to add more credits."}
		}
	}
	return nil
}

// Settle computes the proposed state delta after a successful completion.
// Paid-model usage by an active subscriber debits credits; free-model usage by
// an unsubscribed user draws down the free-token allowance and may overflow
// the limit by the single request that crossed it. Every other combination is
// a no-op. The snapshot is never mutated.
//
// A paid request whose cost would push the balance negative is denied here
// rather than charged; the pre-call balance check makes this rare.
func Settle(acct models.Account, model models.AIModel, usage models.UsageResult) (models.ProposedDebit, error) {
	if !model.IsFree() && usage.TotalCost > 0 {
		if acct.CreditsBalance-usage.TotalCost < 0 {
			return models.ProposedDebit{Kind: models.DebitNone}, &DeniedError{Reason: fmt.Sprintf(
				"This request costs $%.4f but you only have $%.2f remaining. Please upgrade your plan.",
				usage.TotalCost, acct.CreditsBalance,
			)}
		}
		return models.ProposedDebit{
			Kind:              models.DebitCredits,
			Cost:              usage.TotalCost,
			NewCreditsBalance: acct.CreditsBalance - usage.TotalCost,
			NewCreditsUsed:    acct.CreditsUsed + usage.TotalCost,
		}, nil
	}

	if model.IsFree() && acct.Unsubscribed() {
		return models.ProposedDebit{
			Kind:              models.DebitFreeTokens,
			Tokens:            int64(usage.TotalTokens),
			NewFreeTokensUsed: acct.FreeTokensUsed + int64(usage.TotalTokens),
		}, nil
	}

	return models.ProposedDebit{Kind: models.DebitNone}, nil
}

// BudgetStatus is a read-only view of an account's budgets.
type BudgetStatus struct {
	Tier                string  `json:"tier"`
	CreditsBalance      float64 `json:"credits_balance"`
	CreditsAllocated    float64 `json:"credits_allocated"`
	CreditsUsed         float64 `json:"credits_used"`
	FreeTokensUsed      int64   `json:"free_tokens_used"`
	FreeTokensLimit     int64   `json:"free_tokens_limit"`
	FreeTokensRemaining int64   `json:"free_tokens_remaining"`
}

// Status summarizes the account's budgets for display.
func Status(acct models.Account) BudgetStatus {
	tier := "unsubscribed"
	if acct.Trialing() {
		tier = "trialing"
	} else if acct.Subscribed() {
		tier = "active"
	}

	remaining := acct.FreeTokensLimit - acct.FreeTokensUsed
	if remaining < 0 {
		remaining = 0
	}

	return BudgetStatus{
		Tier:                tier,
		CreditsBalance:      acct.CreditsBalance,
		CreditsAllocated:    acct.CreditsAllocated,
		CreditsUsed:         acct.CreditsUsed,
		FreeTokensUsed:      acct.FreeTokensUsed,
		FreeTokensLimit:     acct.FreeTokensLimit,
		FreeTokensRemaining: remaining,
	}
}
