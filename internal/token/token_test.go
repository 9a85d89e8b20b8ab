package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testAccountSid = "AC00000000000000000000000000000000"
	testAuthToken  = "secret"
	testAppSid     = "AP00000000000000000000000000000000"
)

func parseToken(t *testing.T, signed string) jwt.MapClaims {
	t.Helper()

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testAuthToken), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	return claims
}

func TestCapability(t *testing.T) {
	gen := NewGenerator(testAccountSid, testAuthToken, testAppSid)

	signed, err := gen.Capability("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := parseToken(t, signed)

	if claims["iss"] != testAccountSid {
		t.Errorf("expected iss %s, got %v", testAccountSid, claims["iss"])
	}

	scope, ok := claims["scope"].(string)
	if !ok {
		t.Fatal("expected scope claim to be a string")
	}
	if !strings.Contains(scope, "scope:client:outgoing?appSid="+testAppSid) {
		t.Errorf("scope missing outgoing grant: %s", scope)
	}
	if !strings.Contains(scope, "clientName=alice") {
		t.Errorf("scope missing client name: %s", scope)
	}
	if !strings.Contains(scope, "scope:client:incoming?clientName=alice") {
		t.Errorf("scope missing incoming grant: %s", scope)
	}
}

func TestCapabilityExpiry(t *testing.T) {
	gen := NewGenerator(testAccountSid, testAuthToken, testAppSid)

	signed, err := gen.Capability("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := parseToken(t, signed)

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatal("expected numeric exp claim")
	}

	remaining := time.Until(time.Unix(int64(exp), 0))
	if remaining < 59*time.Minute || remaining > 61*time.Minute {
		t.Errorf("expected roughly one hour until expiry, got %v", remaining)
	}
}

func TestCapabilityEscapesClientName(t *testing.T) {
	gen := NewGenerator(testAccountSid, testAuthToken, testAppSid)

	signed, err := gen.Capability("ops@desk.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := parseToken(t, signed)
	scope := claims["scope"].(string)

	if !strings.Contains(scope, "clientName=ops%40desk.example") {
		t.Errorf("expected escaped client name in scope, got %s", scope)
	}
}
