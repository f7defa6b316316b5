package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/A1X6/saaschat/pkg/config"
	"github.com/A1X6/saaschat/pkg/models"
	"github.com/A1X6/saaschat/pkg/tokenizer"
)

func testClient(url string) *Client {
	return New(config.OpenRouterConfig{
		URL:      url,
		APIKey:   "sk-test",
		Referer:  "https://example.com",
		AppTitle: "saaschat-test",
		Timeout:  5 * time.Second,
	})
}

func TestComplete(t *testing.T) {
	msgs := []models.Message{
		{Role: models.RoleSystem, Content: "You are a helpful assistant."},
		{Role: models.RoleUser, Content: "Hello"},
	}

	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("HTTP-Referer"); got != "https://example.com" {
			t.Errorf("unexpected referer %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "saaschat-test" {
			t.Errorf("unexpected title %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Hi there!"}}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 10, "total_tokens": 30, "cost": 0.0042}
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	got, err := c.Complete(context.Background(), msgs, "openai/gpt-4o", 128000, 0.7)
	if err != nil {
		t.Fatal(err)
	}

	if got.Text != "Hi there!" {
		t.Errorf("expected reply text, got %q", got.Text)
	}
	if got.Usage.TotalTokens != 30 {
		t.Errorf("expected 30 total tokens, got %d", got.Usage.TotalTokens)
	}
	if got.Usage.TotalCost != 0.0042 {
		t.Errorf("expected cost 0.0042, got %v", got.Usage.TotalCost)
	}
	if diff := math.Abs(got.Usage.InputCost + got.Usage.OutputCost - got.Usage.TotalCost); diff > 1e-9 {
		t.Errorf("cost split does not sum to total: %v + %v vs %v", got.Usage.InputCost, got.Usage.OutputCost, got.Usage.TotalCost)
	}

	if captured.Model != "openai/gpt-4o" {
		t.Errorf("unexpected model %q", captured.Model)
	}
	if captured.Temperature != 0.7 {
		t.Errorf("unexpected temperature %v", captured.Temperature)
	}
	want := OutputBudget(128000, tokenizer.EstimateMessages(msgs))
	if captured.MaxTokens != want {
		t.Errorf("expected max_tokens %d, got %d", want, captured.MaxTokens)
	}
}

func TestCompleteCostAsString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": "ok"}}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 5, "total_tokens": 10, "cost": "0.001"}
		}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}}, "m", 8000, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Usage.TotalCost != 0.001 {
		t.Errorf("expected cost 0.001, got %v", got.Usage.TotalCost)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [], "usage": {"total_tokens": 3}}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}}, "m", 8000, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "" {
		t.Errorf("expected empty text, got %q", got.Text)
	}
}

func TestCompleteErrorsAreUniform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}}, "m", 8000, 0)
	if !errors.Is(err, ErrCompletionFailed) {
		t.Errorf("expected ErrCompletionFailed, got %v", err)
	}

	// Unreachable host takes the same path.
	_, err = testClient("http://127.0.0.1:1").Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}}, "m", 8000, 0)
	if !errors.Is(err, ErrCompletionFailed) {
		t.Errorf("expected ErrCompletionFailed, got %v", err)
	}
}

func TestOutputBudget(t *testing.T) {
	cases := []struct {
		window, estInput, want int
	}{
		{1000, 0, 800},
		{1000, 500, 400},
		{1000, 900, 100},  // below the floor
		{1000, 2000, 100}, // input overflows the window entirely
		{128000, 8000, 96000},
	}
	for _, tc := range cases {
		if got := OutputBudget(tc.window, tc.estInput); got != tc.want {
			t.Errorf("OutputBudget(%d, %d): expected %d, got %d", tc.window, tc.estInput, tc.want, got)
		}
	}
}

func TestSplitCost(t *testing.T) {
	in, out := SplitCost(1.0, 100, 100)
	// Weights 40 vs 100.
	if math.Abs(in-40.0/140.0) > 1e-9 {
		t.Errorf("unexpected input cost %v", in)
	}
	if math.Abs(out-100.0/140.0) > 1e-9 {
		t.Errorf("unexpected output cost %v", out)
	}

	if in, out := SplitCost(0, 100, 100); in != 0 || out != 0 {
		t.Errorf("zero cost: expected 0, 0, got %v, %v", in, out)
	}
	if in, out := SplitCost(1.0, 0, 0); in != 0 || out != 0 {
		t.Errorf("zero tokens: expected 0, 0, got %v, %v", in, out)
	}
}
