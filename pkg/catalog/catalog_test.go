package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/A1X6/saaschat/pkg/models"
)

func testModels() []models.AIModel {
	return []models.AIModel{
		{ID: "paid/one", Name: "Paid One", MaxTokens: 128000, Tier: models.TierPaid, Category: "flagship", InputPrice: 2, OutputPrice: 10},
		{ID: "free/one", Name: "Free One", MaxTokens: 32000, Tier: models.TierFree, Category: "general"},
		{ID: "free/two", Name: "Free Two", MaxTokens: 64000, Tier: models.TierFree, Category: "general"},
	}
}

func TestDefaultIsFirstFree(t *testing.T) {
	c, err := New(testModels())
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Default().ID; got != "free/one" {
		t.Errorf("expected free/one, got %s", got)
	}
}

func TestDefaultFallsBackToFirst(t *testing.T) {
	c, err := New([]models.AIModel{
		{ID: "paid/only", Name: "Paid Only", MaxTokens: 8000, Tier: models.TierPaid, InputPrice: 1, OutputPrice: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Default().ID; got != "paid/only" {
		t.Errorf("expected paid/only, got %s", got)
	}
}

func TestByID(t *testing.T) {
	c, err := New(testModels())
	if err != nil {
		t.Fatal(err)
	}

	m, ok := c.ByID("paid/one")
	if !ok {
		t.Fatal("expected paid/one to exist")
	}
	if m.OutputPrice != 10 {
		t.Errorf("expected output price 10, got %v", m.OutputPrice)
	}

	if _, ok := c.ByID("nope"); ok {
		t.Error("expected unknown id to be absent")
	}
	if c.IsFree("nope") {
		t.Error("unknown id must not be free")
	}
	if !c.IsFree("free/two") {
		t.Error("expected free/two to be free")
	}
}

func TestTierPartition(t *testing.T) {
	c, err := New(testModels())
	if err != nil {
		t.Fatal(err)
	}
	if got := len(c.Free()); got != 2 {
		t.Errorf("expected 2 free models, got %d", got)
	}
	if got := len(c.Paid()); got != 1 {
		t.Errorf("expected 1 paid model, got %d", got)
	}
	if got := len(c.ByCategory()["general"]); got != 2 {
		t.Errorf("expected 2 general models, got %d", got)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name  string
		model models.AIModel
	}{
		{"empty id", models.AIModel{MaxTokens: 1000, Tier: models.TierFree}},
		{"zero window", models.AIModel{ID: "m", Tier: models.TierFree}},
		{"free with price", models.AIModel{ID: "m", MaxTokens: 1000, Tier: models.TierFree, InputPrice: 1}},
		{"paid missing price", models.AIModel{ID: "m", MaxTokens: 1000, Tier: models.TierPaid, InputPrice: 1}},
		{"unknown tier", models.AIModel{ID: "m", MaxTokens: 1000, Tier: "premium"}},
	}
	for _, tc := range cases {
		if _, err := New([]models.AIModel{tc.model}); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	if _, err := New(nil); err == nil {
		t.Error("empty catalog: expected error")
	}

	dup := append(testModels(), models.AIModel{ID: "free/one", Name: "Dup", MaxTokens: 1000, Tier: models.TierFree})
	if _, err := New(dup); err == nil {
		t.Error("duplicate id: expected error")
	}
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	def := c.Default()
	if !def.IsFree() {
		t.Errorf("built-in default must be free, got %s (%s)", def.ID, def.Tier)
	}
	if len(c.Paid()) == 0 {
		t.Error("built-in catalog should include paid models")
	}
}

func TestLoadFile(t *testing.T) {
	content := `
- id: test/free
  name: Test Free
  max_tokens: 16000
  tier: free
  category: general
- id: test/paid
  name: Test Paid
  max_tokens: 200000
  tier: paid
  category: flagship
  input_price: 3.0
  output_price: 15.0
`
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Default().ID; got != "test/free" {
		t.Errorf("expected test/free default, got %s", got)
	}
	m, ok := c.ByID("test/paid")
	if !ok {
		t.Fatal("expected test/paid to exist")
	}
	if m.MaxTokens != 200000 || m.InputPrice != 3.0 {
		t.Errorf("unexpected model: %+v", m)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
}
