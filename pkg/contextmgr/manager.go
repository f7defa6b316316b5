// Package contextmgr decides, on every chat turn, whether the accumulated
// conversation fits the model's context window, and compresses history when
// it does not. Optimization never fails: every fallible step degrades to a
// deterministic fallback.
package contextmgr

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/A1X6/saaschat/pkg/models"
	"github.com/A1X6/saaschat/pkg/tokenizer"
)

const (
	// recentMessagesToKeep is always kept verbatim (~5 exchange pairs).
	recentMessagesToKeep = 10
	// thresholdFraction of the context window triggers compression.
	thresholdFraction = 0.7
	// summaryReserveTokens guards against summary-prompt overhead.
	summaryReserveTokens = 500
	// summaryMaxTokens bounds the latency and cost of the summarization call.
	summaryMaxTokens = 1000
	// summaryMinBudget below which the AI call is skipped for a digest.
	summaryMinBudget = 100
	// summaryTemperature biases summaries toward faithfulness.
	summaryTemperature = 0.3

	summaryPrefix       = "[Previous conversation summary]: "
	summarySystemPrompt = "You are a helpful assistant that summarizes conversations concisely."
)

// SummarizeFunc issues a completion call and returns the generated text.
// Injected at construction so the manager never depends on a concrete client.
type SummarizeFunc func(ctx context.Context, messages []models.Message, modelID string, maxTokens int, temperature float64) (string, error)

// Result is the outcome of one optimization pass.
type Result struct {
	Messages      []models.Message `json:"messages"`
	WasSummarized bool             `json:"was_summarized"`
	TokensReduced int              `json:"tokens_reduced"`
}

// Manager compresses conversations that exceed the context threshold.
type Manager struct {
	counter   *tokenizer.Counter
	summarize SummarizeFunc
	cache     *SummaryCache
}

// New creates a Manager. cache may be nil to disable summary caching.
func New(counter *tokenizer.Counter, summarize SummarizeFunc, cache *SummaryCache) *Manager {
	return &Manager{counter: counter, summarize: summarize, cache: cache}
}

// Optimize returns the conversation to send upstream. Below the threshold the
// input is returned unchanged with no extra calls. Above it, old messages are
// summarized with the same model the user selected; the summary becomes a
// synthesized system message placed after the persona prompt.
func (m *Manager) Optimize(ctx context.Context, messages []models.Message, modelMaxTokens int, modelID string) Result {
	totalTokens := m.counter.Count(messages)
	threshold := float64(modelMaxTokens) * thresholdFraction

	if float64(totalTokens) < threshold {
		return Result{Messages: messages, WasSummarized: false, TokensReduced: 0}
	}

	log.Printf("contextmgr: %d tokens over threshold %.0f for %s, compressing", totalTokens, threshold, modelID)

	var systemMessage *models.Message
	start := 0
	if len(messages) > 0 && messages[0].Role == models.RoleSystem {
		systemMessage = &messages[0]
		start = 1
	}

	recentStart := len(messages) - recentMessagesToKeep
	if recentStart < start {
		recentStart = start
	}
	recent := messages[recentStart:]
	old := messages[start:recentStart]

	// Short conversation that still blew the threshold: plain sliding window.
	if len(old) == 0 {
		optimized := make([]models.Message, 0, 1+len(recent))
		if systemMessage != nil {
			optimized = append(optimized, *systemMessage)
		}
		optimized = append(optimized, recent...)
		return Result{
			Messages:      optimized,
			WasSummarized: false,
			TokensReduced: clampNonNegative(totalTokens - m.counter.Count(optimized)),
		}
	}

	systemTokens := 0
	if systemMessage != nil {
		systemTokens = m.counter.Count([]models.Message{*systemMessage})
	}
	availableTokens := modelMaxTokens - systemTokens - m.counter.Count(recent)

	summary := m.summarizeOld(ctx, old, modelID, availableTokens)

	optimized := make([]models.Message, 0, 2+len(recent))
	if systemMessage != nil {
		optimized = append(optimized, *systemMessage)
	}
	optimized = append(optimized, models.Message{
		Role:    models.RoleSystem,
		Content: summaryPrefix + summary,
	})
	optimized = append(optimized, recent...)

	return Result{
		Messages:      optimized,
		WasSummarized: true,
		TokensReduced: clampNonNegative(totalTokens - m.counter.Count(optimized)),
	}
}

// summarizeOld produces a summary of the old span, via the model itself when
// the budget allows, otherwise via deterministic truncation. Never fails.
func (m *Manager) summarizeOld(ctx context.Context, old []models.Message, modelID string, availableTokens int) string {
	var transcript strings.Builder
	for i, msg := range old {
		if i > 0 {
			transcript.WriteString("\n\n")
		}
		transcript.WriteString(strings.ToUpper(string(msg.Role)))
		transcript.WriteString(": ")
		transcript.WriteString(msg.Content)
	}

	prompt := fmt.Sprintf(
		"Please provide a concise summary of this conversation, capturing the key points, decisions, and context. Keep it under 200 words:\n\n%s\n\nSummary:",
		transcript.String(),
	)

	budget := availableTokens - m.counter.CountText(prompt) - summaryReserveTokens
	if budget > summaryMaxTokens {
		budget = summaryMaxTokens
	}
	if budget < summaryMinBudget {
		log.Printf("contextmgr: summary budget %d too small for %s, using digest", budget, modelID)
		return digest(old, 50, " | ")
	}

	if m.cache != nil {
		if summary, ok := m.cache.Get(HashSpan(modelID, old)); ok {
			return summary
		}
	}

	summary, err := m.summarize(ctx, []models.Message{
		{Role: models.RoleSystem, Content: summarySystemPrompt},
		{Role: models.RoleUser, Content: prompt},
	}, modelID, budget, summaryTemperature)
	if err != nil {
		log.Printf("contextmgr: summarization with %s failed: %v, using digest", modelID, err)
		return digest(old, 100, " ")
	}

	if m.cache != nil {
		if err := m.cache.Put(HashSpan(modelID, old), summary); err != nil {
			log.Printf("contextmgr: summary cache put: %v", err)
		}
	}
	return summary
}

// digest is the deterministic fallback summary: each message contributes its
// role and a truncated content prefix.
func digest(messages []models.Message, maxChars int, sep string) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = fmt.Sprintf("%s: %s...", m.Role, truncateRunes(m.Content, maxChars))
	}
	return strings.Join(parts, sep)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
