package provider

import (
	"strings"
	"testing"
)

func TestTwiMLEnqueue(t *testing.T) {
	resp := &TwiML{}
	resp.Add(
		Say{Text: "Please wait for the next available agent"},
		Enqueue{Name: "support"},
	)

	out, err := resp.Render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if !strings.HasPrefix(out, "<?xml") {
		t.Error("expected XML declaration")
	}
	want := "<Response><Say>Please wait for the next available agent</Say><Enqueue>support</Enqueue></Response>"
	if !strings.Contains(out, want) {
		t.Errorf("unexpected document:\n%s", out)
	}
}

func TestTwiMLDialClient(t *testing.T) {
	resp := &TwiML{}
	resp.Add(Dial{
		Timeout:  10,
		CallerID: "+15551234567",
		Action:   "/handledialcallstatus",
		Method:   "POST",
		Client:   "alice",
	})

	out, err := resp.Render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{
		`timeout="10"`,
		`callerId="+15551234567"`,
		`action="/handledialcallstatus"`,
		`method="POST"`,
		"<Client>alice</Client>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<Number>") {
		t.Error("empty Number child must be omitted")
	}
}

func TestTwiMLRedirectAndHangup(t *testing.T) {
	out, err := (&TwiML{}).Add(Redirect{URL: "/voice", Method: "POST"}).Render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, `<Redirect method="POST">/voice</Redirect>`) {
		t.Errorf("unexpected redirect document:\n%s", out)
	}

	out, err = (&TwiML{}).Add(Hangup{}).Render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "<Hangup></Hangup>") {
		t.Errorf("unexpected hangup document:\n%s", out)
	}
}

func TestTwiMLPlayLoopZero(t *testing.T) {
	out, err := (&TwiML{}).Add(Play{Loop: 0, URL: "http://example.com/hold.mp3"}).Render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	// loop="0" means repeat forever and must not be dropped
	if !strings.Contains(out, `<Play loop="0">http://example.com/hold.mp3</Play>`) {
		t.Errorf("unexpected play document:\n%s", out)
	}
}
