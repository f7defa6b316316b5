package models

// Tier separates models that draw from paid credits from those that do not.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// AIModel is a single entry in the model catalog. Prices are in dollars per
// million tokens and are only set for paid models; a free model's price is
// definitionally zero.
type AIModel struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	Tier        Tier    `json:"tier" yaml:"tier"`
	Category    string  `json:"category" yaml:"category"`
	InputPrice  float64 `json:"input_price,omitempty" yaml:"input_price,omitempty"`
	OutputPrice float64 `json:"output_price,omitempty" yaml:"output_price,omitempty"`
}

// IsFree reports whether usage of this model is billed against paid credits.
func (m AIModel) IsFree() bool {
	return m.Tier == TierFree
}
