package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dialdesk/acd/internal/provider"
)

type fakeTelephony struct {
	parentSid   string
	parentErr   error
	redirectErr error
	redirects   map[string]string
}

func newFakeTelephony() *fakeTelephony {
	return &fakeTelephony{redirects: make(map[string]string)}
}

func (f *fakeTelephony) QueueStatus(_ context.Context) (provider.QueueStatus, error) {
	return provider.QueueStatus{}, nil
}

func (f *fakeTelephony) DequeueMember(_ context.Context, _, _ string) error { return nil }

func (f *fakeTelephony) RedirectCall(_ context.Context, callSid, url string) error {
	if f.redirectErr != nil {
		return f.redirectErr
	}
	f.redirects[callSid] = url
	return nil
}

func (f *fakeTelephony) ParentCallSid(_ context.Context, _ string) (string, error) {
	return f.parentSid, f.parentErr
}

func (f *fakeTelephony) EnsureQueue(_ context.Context, _ string) (string, error) {
	return "QU1", nil
}

func TestRequestHoldRedirectsParentLeg(t *testing.T) {
	tel := newFakeTelephony()
	tel.parentSid = "CAparent"
	h := NewHoldHandler(tel, zerolog.Nop())

	rec := postForm(t, h.RequestHold, "/request_hold", url.Values{
		"from":     {"alice"},
		"callsid":  {"CAchild"},
		"calltype": {"Inbound"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "CAparent" {
		t.Errorf("expected parent sid in response, got %s", rec.Body.String())
	}

	target, ok := tel.redirects["CAparent"]
	if !ok {
		t.Fatal("expected redirect of the parent leg")
	}
	if !strings.HasSuffix(target, "/hold") {
		t.Errorf("expected redirect to /hold, got %s", target)
	}
}

func TestRequestHoldOutboundUsesGivenSid(t *testing.T) {
	tel := newFakeTelephony()
	h := NewHoldHandler(tel, zerolog.Nop())

	rec := postForm(t, h.RequestHold, "/request_hold", url.Values{
		"from":     {"alice"},
		"callsid":  {"CA100"},
		"calltype": {"Outbound"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := tel.redirects["CA100"]; !ok {
		t.Error("expected redirect of the given call sid")
	}
}

func TestRequestHoldRejectsMissingParams(t *testing.T) {
	h := NewHoldHandler(newFakeTelephony(), zerolog.Nop())

	rec := postForm(t, h.RequestHold, "/request_hold", url.Values{
		"from": {"alice"},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRequestHoldProviderError(t *testing.T) {
	tel := newFakeTelephony()
	tel.redirectErr = errors.New("boom")
	h := NewHoldHandler(tel, zerolog.Nop())

	rec := postForm(t, h.RequestHold, "/request_hold", url.Values{
		"from":     {"alice"},
		"callsid":  {"CA100"},
		"calltype": {"Outbound"},
	})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHoldPlaysMusicForever(t *testing.T) {
	h := NewHoldHandler(newFakeTelephony(), zerolog.Nop())

	rec := postForm(t, h.Hold, "/hold", url.Values{})

	body := rec.Body.String()
	if !strings.Contains(body, `loop="0"`) {
		t.Errorf("expected infinite loop, got %s", body)
	}
	if !strings.Contains(body, "<Play") {
		t.Errorf("expected play verb, got %s", body)
	}
}

func TestRequestUnholdRedirectsToAgent(t *testing.T) {
	tel := newFakeTelephony()
	h := NewHoldHandler(tel, zerolog.Nop())

	rec := postForm(t, h.RequestUnhold, "/request_unhold", url.Values{
		"from":    {"alice"},
		"callsid": {"CA100"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	target := tel.redirects["CA100"]
	if !strings.Contains(target, "/send_to_agent?target_agent=alice") {
		t.Errorf("expected redirect to send_to_agent, got %s", target)
	}
}

func TestSendToAgentDialsClient(t *testing.T) {
	h := NewHoldHandler(newFakeTelephony(), zerolog.Nop())

	rec := postForm(t, h.SendToAgent, "/send_to_agent?target_agent=alice", url.Values{})

	body := rec.Body.String()
	if !strings.Contains(body, "<Client>alice</Client>") {
		t.Errorf("expected dial to alice, got %s", body)
	}
}

func TestSendToAgentRejectsInvalidTarget(t *testing.T) {
	h := NewHoldHandler(newFakeTelephony(), zerolog.Nop())

	rec := postForm(t, h.SendToAgent, "/send_to_agent?target_agent=bad%20agent", url.Values{})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
