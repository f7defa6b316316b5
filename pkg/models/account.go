package models

import "time"

// Subscription statuses as reported by the billing provider. Anything other
// than active or trialing is treated as unsubscribed.
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
)

// Account is a snapshot of a user's budget state: subscription status, paid
// credit balances (dollars), and the free-token allowance for unsubscribed
// users. The entitlement policy only reads snapshots; persistent writes go
// through the store.
type Account struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name,omitempty"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreditsBalance     float64   `json:"credits_balance"`
	CreditsAllocated   float64   `json:"credits_allocated"`
	CreditsUsed        float64   `json:"credits_used"`
	FreeTokensUsed     int64     `json:"free_tokens_used"`
	FreeTokensLimit    int64     `json:"free_tokens_limit"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Trialing reports whether the account is in a trial period.
func (a Account) Trialing() bool { return a.SubscriptionStatus == SubscriptionTrialing }

// Subscribed reports whether the account has an active paid subscription.
func (a Account) Subscribed() bool { return a.SubscriptionStatus == SubscriptionActive }

// Unsubscribed reports whether the account has neither a subscription nor a trial.
func (a Account) Unsubscribed() bool { return !a.Trialing() && !a.Subscribed() }

// DebitKind identifies which budget a proposed debit draws from.
type DebitKind string

const (
	DebitNone       DebitKind = "none"
	DebitCredits    DebitKind = "credits"
	DebitFreeTokens DebitKind = "free_tokens"
)

// ProposedDebit is the state delta the entitlement policy proposes after a
// successful completion. The store applies it; the policy never writes.
type ProposedDebit struct {
	Kind              DebitKind `json:"kind"`
	Cost              float64   `json:"cost,omitempty"`
	Tokens            int64     `json:"tokens,omitempty"`
	NewCreditsBalance float64   `json:"new_credits_balance,omitempty"`
	NewCreditsUsed    float64   `json:"new_credits_used,omitempty"`
	NewFreeTokensUsed int64     `json:"new_free_tokens_used,omitempty"`
}
