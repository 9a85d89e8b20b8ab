package token

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Generator mints provider capability tokens for browser phone clients.
// A capability token is an HS256 JWT signed with the account's auth
// token; the provider JS SDK presents it when it opens its media
// connection.
type Generator struct {
	accountSid string
	authToken  string
	appSid     string
	ttl        time.Duration
}

// NewGenerator creates a Generator. Tokens expire after one hour.
func NewGenerator(accountSid, authToken, appSid string) *Generator {
	return &Generator{
		accountSid: accountSid,
		authToken:  authToken,
		appSid:     appSid,
		ttl:        time.Hour,
	}
}

// Capability returns a signed capability token allowing clientName to
// place outgoing calls through the application and receive incoming
// calls addressed to client:clientName.
func (g *Generator) Capability(clientName string) (string, error) {
	now := time.Now()

	outgoing := fmt.Sprintf("scope:client:outgoing?appSid=%s&clientName=%s",
		g.appSid, url.QueryEscape(clientName))
	incoming := fmt.Sprintf("scope:client:incoming?clientName=%s",
		url.QueryEscape(clientName))

	claims := jwt.MapClaims{
		"scope": strings.Join([]string{outgoing, incoming}, " "),
		"iss":   g.accountSid,
		"exp":   now.Add(g.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(g.authToken))
	if err != nil {
		return "", fmt.Errorf("failed to sign capability token: %w", err)
	}
	return signed, nil
}
