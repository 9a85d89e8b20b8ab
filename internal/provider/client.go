package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production API host of the telephony provider
const DefaultBaseURL = "https://api.twilio.com"

const apiVersion = "2010-04-01"

// Client is the REST client for the telephony provider. Requests are
// form-encoded with basic auth, matching the provider's API conventions.
type Client struct {
	baseURL    string
	accountSid string
	authToken  string
	queueSid   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a provider client. The timeout bounds every outbound
// call; provider unavailability then surfaces as an ordinary error.
func NewClient(baseURL, accountSid, authToken string, timeout time.Duration, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		accountSid: accountSid,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "provider").Logger(),
	}
}

type queueResource struct {
	Sid          string `json:"sid"`
	FriendlyName string `json:"friendly_name"`
	CurrentSize  int    `json:"current_size"`
}

type queueList struct {
	Queues []queueResource `json:"queues"`
}

type memberResource struct {
	CallSid string `json:"call_sid"`
}

type callResource struct {
	Sid           string `json:"sid"`
	ParentCallSid string `json:"parent_call_sid"`
}

// EnsureQueue finds the wait queue by friendly name, creating it when it
// does not exist, and remembers its sid for subsequent polls.
func (c *Client) EnsureQueue(ctx context.Context, name string) (string, error) {
	var list queueList
	if err := c.get(ctx, "/Queues.json", &list); err != nil {
		return "", fmt.Errorf("failed to list queues: %w", err)
	}

	for _, q := range list.Queues {
		if q.FriendlyName == name {
			c.queueSid = q.Sid
			c.logger.Info().Str("queue", name).Str("queue_sid", q.Sid).Msg("using existing wait queue")
			return q.Sid, nil
		}
	}

	var created queueResource
	form := url.Values{"FriendlyName": {name}}
	if err := c.post(ctx, "/Queues.json", form, &created); err != nil {
		return "", fmt.Errorf("failed to create queue %s: %w", name, err)
	}

	c.queueSid = created.Sid
	c.logger.Info().Str("queue", name).Str("queue_sid", created.Sid).Msg("created wait queue")
	return created.Sid, nil
}

// QueueStatus reports the wait queue's current size and head caller. An
// empty queue yields a zero status, not an error.
func (c *Client) QueueStatus(ctx context.Context) (QueueStatus, error) {
	var queue queueResource
	if err := c.get(ctx, "/Queues/"+c.queueSid+".json", &queue); err != nil {
		return QueueStatus{}, fmt.Errorf("failed to fetch queue: %w", err)
	}

	status := QueueStatus{Size: queue.CurrentSize}
	if queue.CurrentSize == 0 {
		return status, nil
	}

	var head memberResource
	err := c.get(ctx, "/Queues/"+c.queueSid+"/Members/Front.json", &head)
	if err != nil {
		// The queue can drain between the two reads; a missing front
		// member is an empty queue, not a failure.
		if isNotFound(err) {
			return QueueStatus{}, nil
		}
		return QueueStatus{}, fmt.Errorf("failed to fetch front member: %w", err)
	}

	status.HeadCallSid = head.CallSid
	return status, nil
}

// DequeueMember redirects a waiting member out of the queue to the given
// instruction URL
func (c *Client) DequeueMember(ctx context.Context, callSid, redirectURL string) error {
	form := url.Values{"Url": {redirectURL}, "Method": {"POST"}}
	if err := c.post(ctx, "/Queues/"+c.queueSid+"/Members/"+callSid+".json", form, nil); err != nil {
		return fmt.Errorf("failed to dequeue member %s: %w", callSid, err)
	}
	return nil
}

// RedirectCall points an in-progress call at a new instruction URL
func (c *Client) RedirectCall(ctx context.Context, callSid, redirectURL string) error {
	form := url.Values{"Url": {redirectURL}, "Method": {"POST"}}
	if err := c.post(ctx, "/Calls/"+callSid+".json", form, nil); err != nil {
		return fmt.Errorf("failed to redirect call %s: %w", callSid, err)
	}
	return nil
}

// ParentCallSid resolves the parent leg of a call. Agent legs created by
// a Dial carry the customer call as their parent.
func (c *Client) ParentCallSid(ctx context.Context, callSid string) (string, error) {
	var call callResource
	if err := c.get(ctx, "/Calls/"+callSid+".json", &call); err != nil {
		return "", fmt.Errorf("failed to fetch call %s: %w", callSid, err)
	}
	return call.ParentCallSid, nil
}

// statusError carries the HTTP status of a failed provider request
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNotFound
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resourceURL(path), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resourceURL(path), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) resourceURL(path string) string {
	return c.baseURL + "/" + apiVersion + "/Accounts/" + c.accountSid + path
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.SetBasicAuth(c.accountSid, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}
