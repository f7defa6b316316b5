// Package catalog holds the static registry of AI models available to chat
// users. The registry is immutable after construction so test fixtures can be
// substituted without touching process state.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/A1X6/saaschat/pkg/models"
)

// Catalog is an immutable model registry.
type Catalog struct {
	all   []models.AIModel
	byID  map[string]models.AIModel
	free  []models.AIModel
	paid  []models.AIModel
	byCat map[string][]models.AIModel
}

// New builds a Catalog from the given entries, validating each one.
// Entry order is preserved: Default() depends on it.
func New(entries []models.AIModel) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog: no models")
	}

	c := &Catalog{
		all:   make([]models.AIModel, len(entries)),
		byID:  make(map[string]models.AIModel, len(entries)),
		byCat: make(map[string][]models.AIModel),
	}
	copy(c.all, entries)

	for _, m := range c.all {
		if err := validate(m); err != nil {
			return nil, err
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate model id %q", m.ID)
		}
		c.byID[m.ID] = m
		c.byCat[m.Category] = append(c.byCat[m.Category], m)
		if m.IsFree() {
			c.free = append(c.free, m)
		} else {
			c.paid = append(c.paid, m)
		}
	}
	return c, nil
}

func validate(m models.AIModel) error {
	if m.ID == "" {
		return fmt.Errorf("catalog: model with empty id")
	}
	if m.MaxTokens <= 0 {
		return fmt.Errorf("catalog: model %q: max_tokens must be positive", m.ID)
	}
	switch m.Tier {
	case models.TierFree:
		if m.InputPrice != 0 || m.OutputPrice != 0 {
			return fmt.Errorf("catalog: free model %q must not have prices", m.ID)
		}
	case models.TierPaid:
		if m.InputPrice <= 0 || m.OutputPrice <= 0 {
			return fmt.Errorf("catalog: paid model %q needs input and output prices", m.ID)
		}
	default:
		return fmt.Errorf("catalog: model %q: unknown tier %q", m.ID, m.Tier)
	}
	return nil
}

// ByID looks up a model by its id.
func (c *Catalog) ByID(id string) (models.AIModel, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// IsFree reports whether the model id refers to a free-tier model.
// Unknown ids are not free.
func (c *Catalog) IsFree(id string) bool {
	m, ok := c.byID[id]
	return ok && m.IsFree()
}

// All returns every model in registration order.
func (c *Catalog) All() []models.AIModel {
	out := make([]models.AIModel, len(c.all))
	copy(out, c.all)
	return out
}

// Free returns the free-tier models in registration order.
func (c *Catalog) Free() []models.AIModel {
	out := make([]models.AIModel, len(c.free))
	copy(out, c.free)
	return out
}

// Paid returns the paid-tier models in registration order.
func (c *Catalog) Paid() []models.AIModel {
	out := make([]models.AIModel, len(c.paid))
	copy(out, c.paid)
	return out
}

// ByCategory returns a derived grouping of models by category.
func (c *Catalog) ByCategory() map[string][]models.AIModel {
	out := make(map[string][]models.AIModel, len(c.byCat))
	for cat, ms := range c.byCat {
		grp := make([]models.AIModel, len(ms))
		copy(grp, ms)
		out[cat] = grp
	}
	return out
}

// Default returns the first free model, or the first model overall if no free
// model exists. Free models are the safe default for low-trust request paths.
func (c *Catalog) Default() models.AIModel {
	if len(c.free) > 0 {
		return c.free[0]
	}
	return c.all[0]
}

// LoadFile reads a model catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models file: %w", err)
	}

	var entries []models.AIModel
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse models file: %w", err)
	}
	return New(entries)
}
