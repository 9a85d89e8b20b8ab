package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dialdesk/acd/internal/token"
	"github.com/dialdesk/acd/internal/types"
)

// TokenHandler mints capability tokens for browser phone clients
type TokenHandler struct {
	generator *token.Generator
	logger    zerolog.Logger
}

// NewTokenHandler creates a TokenHandler
func NewTokenHandler(gen *token.Generator, logger zerolog.Logger) *TokenHandler {
	return &TokenHandler{
		generator: gen,
		logger:    logger.With().Str("component", "token").Logger(),
	}
}

// Token handles GET /token?client=, returning a capability token for
// the named client as plain text
func (h *TokenHandler) Token(w http.ResponseWriter, r *http.Request) {
	client := r.URL.Query().Get("client")
	if !types.ValidAgentID(client) {
		http.Error(w, "Invalid client name", http.StatusBadRequest)
		return
	}

	signed, err := h.generator.Capability(client)
	if err != nil {
		h.logger.Error().Err(err).Str("client", client).Msg("failed to mint capability token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(signed))
}
