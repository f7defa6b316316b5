package catalog

import "github.com/A1X6/saaschat/pkg/models"

// defaultModels is the built-in catalog, used when no models file is
// configured. Ids follow OpenRouter naming; prices are dollars per million
// tokens. The first free entry is the process-wide default model.
var defaultModels = []models.AIModel{
	{
		ID:        "meta-llama/llama-4-maverick:free",
		Name:      "Llama 4 Maverick (free)",
		MaxTokens: 128000,
		Tier:      models.TierFree,
		Category:  "general",
	},
	{
		ID:        "meta-llama/llama-3.3-70b-instruct:free",
		Name:      "Llama 3.3 70B (free)",
		MaxTokens: 131072,
		Tier:      models.TierFree,
		Category:  "general",
	},
	{
		ID:        "deepseek/deepseek-chat-v3-0324:free",
		Name:      "DeepSeek V3 (free)",
		MaxTokens: 163840,
		Tier:      models.TierFree,
		Category:  "reasoning",
	},
	{
		ID:        "google/gemma-3-27b-it:free",
		Name:      "Gemma 3 27B (free)",
		MaxTokens: 96000,
		Tier:      models.TierFree,
		Category:  "general",
	},
	{
		ID:          "openai/gpt-4o",
		Name:        "GPT-4o",
		MaxTokens:   128000,
		Tier:        models.TierPaid,
		Category:    "flagship",
		InputPrice:  2.50,
		OutputPrice: 10.00,
	},
	{
		ID:          "openai/gpt-4o-mini",
		Name:        "GPT-4o mini",
		MaxTokens:   128000,
		Tier:        models.TierPaid,
		Category:    "fast",
		InputPrice:  0.15,
		OutputPrice: 0.60,
	},
	{
		ID:          "anthropic/claude-3.5-sonnet",
		Name:        "Claude 3.5 Sonnet",
		MaxTokens:   200000,
		Tier:        models.TierPaid,
		Category:    "flagship",
		InputPrice:  3.00,
		OutputPrice: 15.00,
	},
	{
		ID:          "anthropic/claude-3.5-haiku",
		Name:        "Claude 3.5 Haiku",
		MaxTokens:   200000,
		Tier:        models.TierPaid,
		Category:    "fast",
		InputPrice:  0.80,
		OutputPrice: 4.00,
	},
	{
		ID:          "google/gemini-2.0-flash-001",
		Name:        "Gemini 2.0 Flash",
		MaxTokens:   1000000,
		Tier:        models.TierPaid,
		Category:    "fast",
		InputPrice:  0.10,
		OutputPrice: 0.40,
	},
	{
		ID:          "deepseek/deepseek-r1",
		Name:        "DeepSeek R1",
		MaxTokens:   163840,
		Tier:        models.TierPaid,
		Category:    "reasoning",
		InputPrice:  0.55,
		OutputPrice: 2.19,
	},
}

// Defaults returns a Catalog built from the built-in model set.
func Defaults() *Catalog {
	c, err := New(defaultModels)
	if err != nil {
		// The built-in set is validated by tests; this cannot happen at runtime.
		panic(err)
	}
	return c
}
