package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/explohq/chatprd/internal/export"
	"github.com/explohq/chatprd/internal/llm"
	"github.com/explohq/chatprd/internal/prd"
)

const (
	chatTimeout     = 30 * time.Second
	chatMaxTokens   = 2048
	chatTemperature = 0.7
	chatHistoryMax  = 20
)

type chatRequest struct {
	Conversation []llm.Message `json:"conversation"`
}

type chatResponse struct {
	Response   string     `json:"response"`
	TokenUsage tokenUsage `json:"tokenUsage"`
}

type tokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

type optimizeRequest struct {
	Conversation []llm.Message `json:"conversation"`
	TotalTokens  int           `json:"totalTokens"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleChat relays one completion call, trimming the conversation to the
// most recent messages with recognized roles.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Conversation) == 0 {
		writeError(w, http.StatusBadRequest, "No conversation provided")
		return
	}

	messages := recentMessages(req.Conversation, chatHistoryMax)

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()

	text, usage, err := h.chat.Complete(ctx, "chat", llm.CompletionRequest{
		Model:       h.chatModel,
		Messages:    messages,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("chat completion failed")
		writeError(w, http.StatusInternalServerError, "Failed to connect to chat API")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response: text,
		TokenUsage: tokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
	})
}

// handleOptimize runs the compaction pipeline. Contained sub-step failures
// still produce a 200 with a reduced result; only a too-short conversation
// maps to a client error.
func (h *Handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.optimizer.Optimize(r.Context(), req.Conversation, req.TotalTokens)
	if err != nil {
		if errors.Is(err, prd.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, "No conversation to optimize")
			return
		}
		h.log.Error().Err(err).Msg("optimization failed")
		writeError(w, http.StatusInternalServerError, "Optimization error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.exporter.Export(r.Context(), req.Conversation)
	if err != nil {
		if errors.Is(err, export.ErrNoConversation) {
			writeError(w, http.StatusBadRequest, "No conversation provided")
			return
		}
		h.log.Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "Failed to generate PRD")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// recentMessages keeps the last limit messages whose role the upstream API
// accepts.
func recentMessages(conversation []llm.Message, limit int) []llm.Message {
	if len(conversation) > limit {
		conversation = conversation[len(conversation)-limit:]
	}
	messages := make([]llm.Message, 0, len(conversation))
	for _, msg := range conversation {
		switch msg.Role {
		case "system", "user", "assistant":
			messages = append(messages, msg)
		}
	}
	return messages
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
