package models

import "time"

// UsageResult holds the token and cost accounting for one completion call.
// TotalTokens is input + output; TotalCost is input + output cost, allowing
// for rounding in the split.
type UsageResult struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// Completion is the normalized result of a completion provider call.
type Completion struct {
	Text  string      `json:"text"`
	Usage UsageResult `json:"usage"`
}

// UsageRecord is a persisted token usage log entry. It survives conversation
// deletion and is the source of truth for per-user accounting.
type UsageRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	InputCost    float64   `json:"input_cost"`
	OutputCost   float64   `json:"output_cost"`
	TotalCost    float64   `json:"total_cost"`
	CreatedAt    time.Time `json:"created_at"`
}

// UsageSummary aggregates usage for one user and model.
type UsageSummary struct {
	UserID       string  `json:"user_id"`
	Model        string  `json:"model"`
	RequestCount int     `json:"request_count"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalTokens  int64   `json:"total_tokens"`
	TotalCost    float64 `json:"total_cost"`
}
