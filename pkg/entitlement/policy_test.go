package entitlement

import (
	"math"
	"testing"

	"github.com/A1X6/saaschat/pkg/models"
)

var (
	freeModel = models.AIModel{ID: "free/model", MaxTokens: 128000, Tier: models.TierFree}
	paidModel = models.AIModel{ID: "paid/model", MaxTokens: 128000, Tier: models.TierPaid, InputPrice: 2.5, OutputPrice: 10}
)

func unsubscribed(used, limit int64) models.Account {
	return models.Account{ID: "u1", FreeTokensUsed: used, FreeTokensLimit: limit}
}

func TestAuthorizeUnsubscribed(t *testing.T) {
	acct := unsubscribed(0, 1000000)

	if err := Authorize(acct, freeModel); err != nil {
		t.Errorf("free model should be allowed: %v", err)
	}
	if err := Authorize(acct, paidModel); !IsDenied(err) {
		t.Errorf("paid model must be denied, got %v", err)
	}

	exhausted := unsubscribed(1000000, 1000000)
	if err := Authorize(exhausted, freeModel); !IsDenied(err) {
		t.Errorf("exhausted allowance must be denied, got %v", err)
	}

	// One token short of the limit still goes through; the overflow is
	// settled after the fact.
	almost := unsubscribed(999999, 1000000)
	if err := Authorize(almost, freeModel); err != nil {
		t.Errorf("under the limit should be allowed: %v", err)
	}
}

func TestAuthorizeTrialing(t *testing.T) {
	acct := models.Account{ID: "u1", SubscriptionStatus: models.SubscriptionTrialing}

	if err := Authorize(acct, freeModel); err != nil {
		t.Errorf("free model should be allowed: %v", err)
	}
	if err := Authorize(acct, paidModel); !IsDenied(err) {
		t.Errorf("paid model must be denied during trial, got %v", err)
	}

	// Trial usage of free models ignores the free-token counters.
	heavy := acct
	heavy.FreeTokensUsed = 5000000
	heavy.FreeTokensLimit = 1000000
	if err := Authorize(heavy, freeModel); err != nil {
		t.Errorf("trial free usage is unlimited: %v", err)
	}
}

func TestAuthorizeActive(t *testing.T) {
	acct := models.Account{ID: "u1", SubscriptionStatus: models.SubscriptionActive, CreditsBalance: 10}

	if err := Authorize(acct, paidModel); err != nil {
		t.Errorf("funded subscriber should be allowed: %v", err)
	}

	broke := acct
	broke.CreditsBalance = 0
	if err := Authorize(broke, paidModel); !IsDenied(err) {
		t.Errorf("zero balance must be denied paid models, got %v", err)
	}
	if err := Authorize(broke, freeModel); err != nil {
		t.Errorf("free models stay available at zero balance: %v", err)
	}
}

func TestSettleCredits(t *testing.T) {
	acct := models.Account{ID: "u1", SubscriptionStatus: models.SubscriptionActive, CreditsBalance: 5, CreditsUsed: 1}
	usage := models.UsageResult{TotalTokens: 500, TotalCost: 0.02}

	debit, err := Settle(acct, paidModel, usage)
	if err != nil {
		t.Fatal(err)
	}
	if debit.Kind != models.DebitCredits {
		t.Fatalf("expected credits debit, got %s", debit.Kind)
	}
	if math.Abs(debit.NewCreditsBalance-4.98) > 1e-9 {
		t.Errorf("expected balance 4.98, got %v", debit.NewCreditsBalance)
	}
	if math.Abs(debit.NewCreditsUsed-1.02) > 1e-9 {
		t.Errorf("expected used 1.02, got %v", debit.NewCreditsUsed)
	}
	if acct.CreditsBalance != 5 {
		t.Error("snapshot must not be mutated")
	}
}

func TestSettleInsufficientCredits(t *testing.T) {
	acct := models.Account{ID: "u1", SubscriptionStatus: models.SubscriptionActive, CreditsBalance: 0.01}
	usage := models.UsageResult{TotalTokens: 500, TotalCost: 0.02}

	debit, err := Settle(acct, paidModel, usage)
	if !IsDenied(err) {
		t.Fatalf("expected denial, got %v", err)
	}
	if debit.Kind != models.DebitNone {
		t.Errorf("denied settle must not propose a debit, got %s", debit.Kind)
	}
}

func TestSettleFreeTokens(t *testing.T) {
	acct := unsubscribed(100, 1000000)
	usage := models.UsageResult{TotalTokens: 30}

	debit, err := Settle(acct, freeModel, usage)
	if err != nil {
		t.Fatal(err)
	}
	if debit.Kind != models.DebitFreeTokens {
		t.Fatalf("expected free-token debit, got %s", debit.Kind)
	}
	if debit.NewFreeTokensUsed != 130 {
		t.Errorf("expected 130 tokens used, got %d", debit.NewFreeTokensUsed)
	}
}

func TestSettleFreeTokensOverflow(t *testing.T) {
	// The request that crosses the limit is charged in full; only the
	// next request is denied.
	acct := unsubscribed(999990, 1000000)

	if err := Authorize(acct, freeModel); err != nil {
		t.Fatalf("under the limit should be allowed: %v", err)
	}
	debit, err := Settle(acct, freeModel, models.UsageResult{TotalTokens: 25})
	if err != nil {
		t.Fatal(err)
	}
	if debit.NewFreeTokensUsed != 1000015 {
		t.Errorf("expected overflowed usage 1000015, got %d", debit.NewFreeTokensUsed)
	}

	after := acct
	after.FreeTokensUsed = debit.NewFreeTokensUsed
	if err := Authorize(after, freeModel); !IsDenied(err) {
		t.Errorf("next request must be denied, got %v", err)
	}
}

func TestSettleNoOps(t *testing.T) {
	// Subscribed or trialing users pay nothing for free models.
	cases := []models.Account{
		{ID: "u1", SubscriptionStatus: models.SubscriptionActive, CreditsBalance: 5},
		{ID: "u1", SubscriptionStatus: models.SubscriptionTrialing},
	}
	for _, acct := range cases {
		debit, err := Settle(acct, freeModel, models.UsageResult{TotalTokens: 100})
		if err != nil {
			t.Fatal(err)
		}
		if debit.Kind != models.DebitNone {
			t.Errorf("%s: expected no debit, got %s", acct.SubscriptionStatus, debit.Kind)
		}
	}

	// A paid model with a zero reported cost charges nothing.
	acct := models.Account{ID: "u1", SubscriptionStatus: models.SubscriptionActive, CreditsBalance: 5}
	debit, err := Settle(acct, paidModel, models.UsageResult{TotalTokens: 100})
	if err != nil {
		t.Fatal(err)
	}
	if debit.Kind != models.DebitNone {
		t.Errorf("zero-cost usage: expected no debit, got %s", debit.Kind)
	}
}

func TestStatus(t *testing.T) {
	acct := models.Account{
		ID:                 "u1",
		SubscriptionStatus: models.SubscriptionActive,
		CreditsBalance:     3.5,
		CreditsAllocated:   10,
		CreditsUsed:        6.5,
		FreeTokensUsed:     1200,
		FreeTokensLimit:    1000000,
	}
	st := Status(acct)
	if st.Tier != "active" {
		t.Errorf("expected active tier, got %s", st.Tier)
	}
	if st.FreeTokensRemaining != 998800 {
		t.Errorf("expected 998800 remaining, got %d", st.FreeTokensRemaining)
	}

	over := models.Account{ID: "u2", FreeTokensUsed: 1000020, FreeTokensLimit: 1000000}
	st = Status(over)
	if st.Tier != "unsubscribed" {
		t.Errorf("expected unsubscribed tier, got %s", st.Tier)
	}
	if st.FreeTokensRemaining != 0 {
		t.Errorf("overflowed remaining clamps to 0, got %d", st.FreeTokensRemaining)
	}
}

func TestIsDenied(t *testing.T) {
	if IsDenied(nil) {
		t.Error("nil is not a denial")
	}
	if !IsDenied(&DeniedError{Reason: "no"}) {
		t.Error("expected denial")
	}
}
