// Package tokenizer counts conversation tokens with the cl100k_base sub-word
// encoding, falling back to a character-ratio estimate when the encoder is
// unavailable. Counting never fails.
package tokenizer

import (
	"log"
	"math"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/A1X6/saaschat/pkg/models"
)

const (
	// messageOverheadTokens accounts for role/delimiter framing per message.
	messageOverheadTokens = 4
	// replyPrimingTokens accounts for the implicit assistant-reply priming,
	// added once per conversation.
	replyPrimingTokens = 2
	// fallbackCharsPerToken slightly overestimates: real English text runs
	// closer to 4 chars per token.
	fallbackCharsPerToken = 3.5
)

// Counter counts tokens for conversations and plain text.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New creates a Counter using the cl100k_base encoding. If the encoding
// cannot be loaded every count uses the character-ratio fallback instead.
func New() *Counter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Printf("tokenizer: load cl100k_base: %v (using character estimate)", err)
		return &Counter{}
	}
	return &Counter{enc: enc}
}

// Count returns the token count of a conversation, including per-message
// framing overhead and the assistant-reply priming overhead.
func (c *Counter) Count(messages []models.Message) (n int) {
	if c.enc == nil {
		return fallbackCount(messages)
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tokenizer: encode failed: %v (using character estimate)", r)
			n = fallbackCount(messages)
		}
	}()

	total := 0
	for _, m := range messages {
		total += messageOverheadTokens
		total += len(c.enc.Encode(string(m.Role), nil, nil))
		total += len(c.enc.Encode(m.Content, nil, nil))
	}
	return total + replyPrimingTokens
}

// CountText returns the token count of a single string with no framing overhead.
func (c *Counter) CountText(text string) (n int) {
	if c.enc == nil {
		return Estimate(text)
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tokenizer: encode failed: %v (using character estimate)", r)
			n = Estimate(text)
		}
	}()
	return len(c.enc.Encode(text, nil, nil))
}

// Estimate approximates the token count of text from its character count.
// Exported separately so the calibration constant stays independently testable.
func Estimate(text string) int {
	return int(math.Ceil(float64(len(text)) / fallbackCharsPerToken))
}

// EstimateMessages approximates the token count of a conversation using the
// character ratio plus the same framing overheads as exact counting. Used as
// the cheap pre-call input estimate when sizing the output budget.
func EstimateMessages(messages []models.Message) int {
	total := 0
	for _, m := range messages {
		total += messageOverheadTokens
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total + replyPrimingTokens
}

// fallbackCount mirrors the flat character-based estimate used when exact
// encoding is unavailable: total characters over the ratio, no overheads.
func fallbackCount(messages []models.Message) int {
	chars := 0
	for _, m := range messages {
		chars += len(m.Role) + len(m.Content)
	}
	return int(math.Ceil(float64(chars) / fallbackCharsPerToken))
}
