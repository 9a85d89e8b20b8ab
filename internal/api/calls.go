package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/dialdesk/acd/internal/storage"
)

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CallsHandler serves the diagnostics query over persisted call records
type CallsHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewCallsHandler creates a CallsHandler
func NewCallsHandler(store storage.Store, logger zerolog.Logger) *CallsHandler {
	return &CallsHandler{
		store:  store,
		logger: logger.With().Str("component", "calls").Logger(),
	}
}

// List handles GET /api/calls?date=YYYY-MM-DD, defaulting to today
func (h *CallsHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if !dateKeyPattern.MatchString(date) {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	records, err := h.store.GetCallRecords(date)
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to query call records")
		http.Error(w, "failed to query call records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"date":  date,
		"count": len(records),
		"calls": records,
	})
}
