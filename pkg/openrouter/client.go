// Package openrouter is the completion client for OpenRouter-compatible
// chat completion endpoints.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/A1X6/saaschat/pkg/config"
	"github.com/A1X6/saaschat/pkg/models"
	"github.com/A1X6/saaschat/pkg/tokenizer"
)

// ErrCompletionFailed is returned for every provider failure. Raw provider
// errors are logged internally and never surfaced to callers.
var ErrCompletionFailed = errors.New("failed to get AI response")

const (
	// outputBufferRatio reserves headroom for framing tokens the character
	// estimator may undercount.
	outputBufferRatio = 0.8
	// minOutputTokens is the floor for the generation cap.
	minOutputTokens = 100

	// Cost split weights. Output tokens are nominally ~2.5x more expensive
	// per token than input for typical provider pricing.
	inputCostWeight  = 0.4
	outputCostWeight = 1.0
)

// Client sends chat completion requests to an OpenRouter-compatible provider.
type Client struct {
	baseURL  string
	apiKey   string
	referer  string
	appTitle string
	http     *http.Client
}

// New creates a Client from provider configuration.
func New(cfg config.OpenRouterConfig) *Client {
	return &Client{
		baseURL:  cfg.URL,
		apiKey:   cfg.APIKey,
		referer:  cfg.Referer,
		appTitle: cfg.AppTitle,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int       `json:"prompt_tokens"`
		CompletionTokens int       `json:"completion_tokens"`
		TotalTokens      int       `json:"total_tokens"`
		Cost             flexFloat `json:"cost"`
	} `json:"usage"`
}

// flexFloat decodes a JSON number or numeric string. OpenRouter has reported
// usage.cost both ways.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cost: %s", data)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cost: %w", err)
	}
	*f = flexFloat(n)
	return nil
}

// Complete sends the conversation to the provider with a dynamically computed
// output-token budget and returns normalized token/cost accounting.
func (c *Client) Complete(ctx context.Context, messages []models.Message, modelID string, modelMaxTokens int, temperature float64) (*models.Completion, error) {
	maxOutput := OutputBudget(modelMaxTokens, tokenizer.EstimateMessages(messages))

	body, err := json.Marshal(chatRequest{
		Model:       modelID,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxOutput,
	})
	if err != nil {
		log.Printf("openrouter: marshal request: %v", err)
		return nil, ErrCompletionFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		log.Printf("openrouter: create request: %v", err)
		return nil, ErrCompletionFailed
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.appTitle != "" {
		req.Header.Set("X-Title", c.appTitle)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("openrouter: model %s: %v", modelID, err)
		return nil, ErrCompletionFailed
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("openrouter: read response: %v", err)
		return nil, ErrCompletionFailed
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("openrouter: model %s: status %d: %s", modelID, resp.StatusCode, respBody)
		return nil, ErrCompletionFailed
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		log.Printf("openrouter: decode response: %v", err)
		return nil, ErrCompletionFailed
	}

	text := ""
	if len(parsed.Choices) > 0 {
		text = parsed.Choices[0].Message.Content
	}

	usage := models.UsageResult{
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
		TotalTokens:  parsed.Usage.TotalTokens,
		TotalCost:    float64(parsed.Usage.Cost),
	}
	usage.InputCost, usage.OutputCost = SplitCost(usage.TotalCost, usage.InputTokens, usage.OutputTokens)

	return &models.Completion{Text: text, Usage: usage}, nil
}

// OutputBudget computes the generation cap for a request: 80% of the window
// remaining after the estimated input, clamped to [minOutputTokens, window].
func OutputBudget(modelMaxTokens, estimatedInputTokens int) int {
	available := int(float64(modelMaxTokens-estimatedInputTokens) * outputBufferRatio)
	if available > modelMaxTokens {
		available = modelMaxTokens
	}
	if available < minOutputTokens {
		return minOutputTokens
	}
	return available
}

// SplitCost divides a combined provider-reported cost into input and output
// components using the fixed per-token weighting.
func SplitCost(totalCost float64, inputTokens, outputTokens int) (inputCost, outputCost float64) {
	if totalCost <= 0 {
		return 0, 0
	}
	inputWeight := float64(inputTokens) * inputCostWeight
	outputWeight := float64(outputTokens) * outputCostWeight
	totalWeight := inputWeight + outputWeight
	if totalWeight == 0 {
		return 0, 0
	}
	return totalCost * inputWeight / totalWeight, totalCost * outputWeight / totalWeight
}
