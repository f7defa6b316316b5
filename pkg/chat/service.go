// Package chat runs a full chat turn: validate, authorize, optimize context,
// call the completion provider, settle the budget, and persist the exchange.
package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/A1X6/saaschat/pkg/catalog"
	"github.com/A1X6/saaschat/pkg/contextmgr"
	"github.com/A1X6/saaschat/pkg/entitlement"
	"github.com/A1X6/saaschat/pkg/models"
)

const (
	// maxMessageChars bounds a single user message.
	maxMessageChars = 2000
	// defaultMaxTokens is the assumed context window for unknown model ids.
	defaultMaxTokens = 128000
	// titleWords is how many leading words name a new conversation.
	titleWords = 6
)

// Validation errors, rejected before any external call.
var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message too long")
	ErrInvalidRole    = errors.New("history contains an invalid role")
)

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrMessageTooLong) || errors.Is(err, ErrInvalidRole)
}

// Completer issues completion calls.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message, modelID string, modelMaxTokens int, temperature float64) (*models.Completion, error)
}

// Optimizer compresses conversations that exceed the context threshold.
type Optimizer interface {
	Optimize(ctx context.Context, messages []models.Message, modelMaxTokens int, modelID string) contextmgr.Result
}

// Store is the persistence surface the chat pipeline needs.
type Store interface {
	GetAccount(ctx context.Context, userID string) (models.Account, error)
	ApplyDebit(ctx context.Context, userID string, debit models.ProposedDebit) error
	CreateConversation(ctx context.Context, userID string) (string, error)
	UpdateConversationTitle(ctx context.Context, conversationID, title string) error
	AppendMessage(ctx context.Context, msg models.StoredMessage) (string, error)
	LogUsage(ctx context.Context, rec models.UsageRecord) error
}

// Service wires the chat pipeline together.
type Service struct {
	catalog      *catalog.Catalog
	completer    Completer
	optimizer    Optimizer
	store        Store
	systemPrompt string
	temperature  float64
}

// New creates a chat Service.
func New(cat *catalog.Catalog, completer Completer, optimizer Optimizer, store Store, systemPrompt string, temperature float64) *Service {
	return &Service{
		catalog:      cat,
		completer:    completer,
		optimizer:    optimizer,
		store:        store,
		systemPrompt: systemPrompt,
		temperature:  temperature,
	}
}

// SendRequest is one chat turn from a user.
type SendRequest struct {
	UserID         string           `json:"user_id"`
	ConversationID string           `json:"conversation_id,omitempty"`
	ModelID        string           `json:"model,omitempty"`
	Message        string           `json:"message"`
	History        []models.Message `json:"history,omitempty"`
}

// SendResult is the outcome of a successful chat turn.
type SendResult struct {
	ConversationID   string             `json:"conversation_id"`
	Reply            string             `json:"reply"`
	Model            string             `json:"model"`
	Usage            models.UsageResult `json:"usage"`
	CreditsRemaining float64            `json:"credits_remaining"`
	WasSummarized    bool               `json:"was_summarized"`
	TokensReduced    int                `json:"tokens_reduced"`
}

// Send executes one chat turn. Messages are persisted strictly after a
// successful completion so a provider failure leaves no orphaned user message.
// Callers must serialize turns per user; the authorize-then-settle sequence
// assumes no concurrent spend on the same account.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	acct, err := s.store.GetAccount(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	model := s.resolveModel(req.ModelID)
	if err := entitlement.Authorize(acct, model); err != nil {
		return nil, err
	}

	conversation := make([]models.Message, 0, len(req.History)+2)
	if s.systemPrompt != "" {
		conversation = append(conversation, models.Message{Role: models.RoleSystem, Content: s.systemPrompt})
	}
	conversation = append(conversation, req.History...)
	conversation = append(conversation, models.Message{Role: models.RoleUser, Content: req.Message})

	opt := s.optimizer.Optimize(ctx, conversation, model.MaxTokens, model.ID)

	completion, err := s.completer.Complete(ctx, opt.Messages, model.ID, model.MaxTokens, s.temperature)
	if err != nil {
		return nil, err
	}

	debit, err := entitlement.Settle(acct, model, completion.Usage)
	if err != nil {
		return nil, err
	}
	if err := s.store.ApplyDebit(ctx, acct.ID, debit); err != nil {
		return nil, err
	}

	conversationID := req.ConversationID
	newConversation := conversationID == ""
	if newConversation {
		conversationID, err = s.store.CreateConversation(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
	}

	if _, err := s.store.AppendMessage(ctx, models.StoredMessage{
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        req.Message,
	}); err != nil {
		return nil, err
	}

	if newConversation {
		if err := s.store.UpdateConversationTitle(ctx, conversationID, titleFor(req.Message)); err != nil {
			return nil, err
		}
	}

	if _, err := s.store.AppendMessage(ctx, models.StoredMessage{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        completion.Text,
		Model:          model.ID,
		TokensUsed:     completion.Usage.TotalTokens,
		Cost:           completion.Usage.TotalCost,
	}); err != nil {
		return nil, err
	}

	if err := s.store.LogUsage(ctx, models.UsageRecord{
		UserID:       req.UserID,
		Model:        model.ID,
		InputTokens:  completion.Usage.InputTokens,
		OutputTokens: completion.Usage.OutputTokens,
		TotalTokens:  completion.Usage.TotalTokens,
		InputCost:    completion.Usage.InputCost,
		OutputCost:   completion.Usage.OutputCost,
		TotalCost:    completion.Usage.TotalCost,
	}); err != nil {
		return nil, err
	}

	creditsRemaining := acct.CreditsBalance
	if !model.IsFree() {
		creditsRemaining = acct.CreditsBalance - completion.Usage.TotalCost
	}

	return &SendResult{
		ConversationID:   conversationID,
		Reply:            completion.Text,
		Model:            model.ID,
		Usage:            completion.Usage,
		CreditsRemaining: creditsRemaining,
		WasSummarized:    opt.WasSummarized,
		TokensReduced:    opt.TokensReduced,
	}, nil
}

func validate(req SendRequest) error {
	if req.Message == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(req.Message) > maxMessageChars {
		return ErrMessageTooLong
	}
	for _, m := range req.History {
		if !m.Role.Valid() {
			return ErrInvalidRole
		}
	}
	return nil
}

// resolveModel maps a requested model id to a catalog entry. An empty id gets
// the catalog default; unknown ids are passed through to the provider with
// the default window and paid treatment, so they are never free rides.
func (s *Service) resolveModel(id string) models.AIModel {
	if id == "" {
		return s.catalog.Default()
	}
	if m, ok := s.catalog.ByID(id); ok {
		return m
	}
	return models.AIModel{ID: id, Name: id, MaxTokens: defaultMaxTokens, Tier: models.TierPaid}
}

// titleFor names a new conversation after the first words of its first message.
func titleFor(message string) string {
	words := strings.Fields(message)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	title := strings.Join(words, " ")
	if len(title) < len(message) {
		title += "..."
	}
	return title
}
