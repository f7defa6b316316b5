// Package httpapi exposes the chat service over a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/A1X6/saaschat/pkg/catalog"
	"github.com/A1X6/saaschat/pkg/chat"
	"github.com/A1X6/saaschat/pkg/entitlement"
	"github.com/A1X6/saaschat/pkg/models"
	"github.com/A1X6/saaschat/pkg/openrouter"
	"github.com/A1X6/saaschat/pkg/store"
)

// ChatService runs one chat turn.
type ChatService interface {
	Send(ctx context.Context, req chat.SendRequest) (*chat.SendResult, error)
}

// Reader is the read-only persistence surface the API serves from.
type Reader interface {
	GetAccount(ctx context.Context, userID string) (models.Account, error)
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (models.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.StoredMessage, error)
	UsageSummary(ctx context.Context, userID string, since time.Time) ([]models.UsageSummary, error)
}

// Server is the saaschat HTTP API.
type Server struct {
	addr    string
	svc     ChatService
	catalog *catalog.Catalog
	reader  Reader
	mux     *http.ServeMux
}

// New creates a Server wired with all dependencies.
func New(addr string, svc ChatService, cat *catalog.Catalog, reader Reader) *Server {
	s := &Server{
		addr:    addr,
		svc:     svc,
		catalog: cat,
		reader:  reader,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/chat", s.handleChat)
	s.mux.HandleFunc("/api/models", s.handleModels)
	s.mux.HandleFunc("/api/budget", s.handleBudget)
	s.mux.HandleFunc("/api/usage", s.handleUsage)
	s.mux.HandleFunc("/api/conversations", s.handleConversations)
	s.mux.HandleFunc("/api/conversations/", s.handleConversation)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the API server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("saaschat api listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "missing user id")
		return
	}

	var req chat.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID

	result, err := s.svc.Send(r.Context(), req)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeChatError maps pipeline errors onto status codes. Denials and
// validation failures carry their reason; provider failures stay generic.
func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case chat.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case entitlement.IsDenied(err):
		writeJSONError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, openrouter.ErrCompletionFailed):
		writeJSONError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("httpapi: chat error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"models":  s.catalog.All(),
		"default": s.catalog.Default().ID,
	})
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	acct, err := s.reader.GetAccount(r.Context(), userID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, entitlement.Status(acct))
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	since := time.Time{}
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid since date (use YYYY-MM-DD)")
			return
		}
		since = t
	}
	summaries, err := s.reader.UsageSummary(r.Context(), userID, since)
	if err != nil {
		log.Printf("httpapi: usage summary: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usage": summaries})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	convs, err := s.reader.ListConversations(r.Context(), userID)
	if err != nil {
		log.Printf("httpapi: list conversations: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": convs})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing conversation id")
		return
	}

	conv, err := s.reader.GetConversation(r.Context(), id)
	if err != nil || conv.UserID != userID {
		// Not distinguishing "missing" from "someone else's".
		writeJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}

	msgs, err := s.reader.ListMessages(r.Context(), id)
	if err != nil {
		log.Printf("httpapi: list messages: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversation": conv, "messages": msgs})
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return "", false
	}
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "missing user id")
		return "", false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"code":%d}}`, message, code)
}
