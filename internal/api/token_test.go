package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dialdesk/acd/internal/token"
)

func TestTokenEndpoint(t *testing.T) {
	gen := token.NewGenerator("AC00000000000000000000000000000000", "secret", "AP00000000000000000000000000000000")
	h := NewTokenHandler(gen, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/token?client=alice", nil)
	rec := httptest.NewRecorder()
	h.Token(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parts := strings.Split(rec.Body.String(), "."); len(parts) != 3 {
		t.Errorf("expected a three-part JWT, got %s", rec.Body.String())
	}
}

func TestTokenEndpointRejectsInvalidClient(t *testing.T) {
	gen := token.NewGenerator("AC00000000000000000000000000000000", "secret", "AP00000000000000000000000000000000")
	h := NewTokenHandler(gen, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/token?client=bad%20client", nil)
	rec := httptest.NewRecorder()
	h.Token(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
