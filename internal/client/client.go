// Package client talks to the Wellness Buddy API and substitutes local values
// whenever the backend cannot be reached.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wellnessbuddy/wellness-platform/internal/contacts"
	"github.com/wellnessbuddy/wellness-platform/internal/crisis"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
	"github.com/wellnessbuddy/wellness-platform/internal/plan"
	"github.com/wellnessbuddy/wellness-platform/internal/quote"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

const (
	defaultTimeout = 20 * time.Second

	// OfflineChatReply is shown when the chat endpoint is unavailable.
	OfflineChatReply = "I'm here to support you! While the AI features are temporarily unavailable, remember that you're doing great. Take a deep breath and know that you're not alone. 💙"
	// OfflinePlan is the plan shown when the plan endpoint is unavailable.
	OfflinePlan = "Day 1: Take a 20-minute walk, practice 10 minutes of meditation.\nDay 2: Do 30 minutes of exercise, call a friend or family member.\nDay 3: Try a creative activity like drawing or writing, spend time relaxing with a good book."

	moodSavedLocally    = "Mood saved locally!"
	contactSavedLocally = "Emergency email saved locally!"
)

// ErrStatus wraps non-2xx responses.
var ErrStatus = errors.New("client: unexpected status")

// Client calls the API. Every read and write has a local fallback, so the
// methods only fail when the fallback itself fails.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	token      string
	logger     *logging.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for baseURL (for example "http://localhost:8080/api").
func New(baseURL string, cache Cache, opts ...Option) *Client {
	if cache == nil {
		cache = NewMemoryCache()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      cache,
		logger:     logging.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, typically after Login.
func (c *Client) SetToken(token string) { c.token = token }

// QuoteResult is the quote of the day.
type QuoteResult struct {
	Quote   string
	Offline bool
}

// FetchMotivationQuote returns today's quote, the last cached quote, or the
// built-in fallback.
func (c *Client) FetchMotivationQuote(ctx context.Context) QuoteResult {
	var resp quote.Response
	if err := c.do(ctx, http.MethodGet, "/motivation", nil, &resp); err == nil && resp.Quote != "" {
		if err := c.cache.SetQuote(ctx, resp.Quote); err != nil {
			c.logger.Warn("failed to cache quote", "error", err)
		}
		return QuoteResult{Quote: resp.Quote}
	} else if err != nil {
		c.logger.Debug("motivation unavailable, using local quote", "error", err)
	}

	if cached, err := c.cache.Quote(ctx); err == nil && cached != "" {
		return QuoteResult{Quote: cached, Offline: true}
	}
	return QuoteResult{Quote: quote.Fallback, Offline: true}
}

// MoodHistory is the user's recorded moods.
type MoodHistory struct {
	Entries []mood.Entry
	Offline bool
}

// FetchMoodHistory returns the server history, or locally saved moods.
func (c *Client) FetchMoodHistory(ctx context.Context) (MoodHistory, error) {
	var entries []mood.Entry
	err := c.do(ctx, http.MethodGet, "/moods", nil, &entries)
	if err == nil {
		return MoodHistory{Entries: entries}, nil
	}
	c.logger.Debug("mood history unavailable, using local cache", "error", err)

	local, cacheErr := c.cache.Moods(ctx)
	if cacheErr != nil {
		return MoodHistory{Offline: true}, fmt.Errorf("client: load local moods: %w", cacheErr)
	}
	return MoodHistory{Entries: local, Offline: true}, nil
}

// MoodAck confirms a saved mood.
type MoodAck struct {
	Entry   mood.Entry
	Message string
	Offline bool
}

// PersistMood saves a mood on the server, or locally with today's date.
func (c *Client) PersistMood(ctx context.Context, req mood.CreateRequest) (MoodAck, error) {
	if err := req.Validate(); err != nil {
		return MoodAck{}, err
	}

	var entry mood.Entry
	err := c.do(ctx, http.MethodPost, "/mood", req, &entry)
	if err == nil {
		return MoodAck{Entry: entry, Message: "Mood saved"}, nil
	}
	c.logger.Debug("mood endpoint unavailable, saving locally", "error", err)

	entry = mood.Entry{
		Date:     c.now().Format("2006-01-02"),
		Score:    req.Score,
		Category: req.Category,
	}
	if req.Date != "" {
		entry.Date = req.Date
	}
	if err := c.cache.SaveMood(ctx, entry); err != nil {
		return MoodAck{}, fmt.Errorf("client: save mood locally: %w", err)
	}
	return MoodAck{Entry: entry, Message: moodSavedLocally, Offline: true}, nil
}

// ChatReply is the assistant's answer to one message.
type ChatReply struct {
	Response string        `json:"response"`
	Crisis   crisis.Signal `json:"crisis"`
	Notice   string        `json:"notice,omitempty"`
	Offline  bool          `json:"-"`
}

// SendChatMessage posts text to the chat endpoint. When the API is down the
// reply is the offline message, and the crisis scan still runs locally so the
// lifeline text is never lost.
func (c *Client) SendChatMessage(ctx context.Context, text string) ChatReply {
	var reply ChatReply
	err := c.do(ctx, http.MethodPost, "/chat", map[string]string{"message": text}, &reply)
	if err == nil {
		return reply
	}
	c.logger.Debug("chat unavailable, using offline reply", "error", err)

	reply = ChatReply{Response: OfflineChatReply, Crisis: crisis.Scan(text), Offline: true}
	if reply.Crisis.Triggered {
		reply.Notice = crisis.LifelineText
	}
	return reply
}

// ContactAck confirms a saved emergency contact.
type ContactAck struct {
	Message        string `json:"message"`
	EmergencyEmail string `json:"emergencyEmail"`
	Offline        bool   `json:"-"`
}

// PersistEmergencyContact validates email, keeps a local copy, and sends it
// to the server.
func (c *Client) PersistEmergencyContact(ctx context.Context, email string) (ContactAck, error) {
	normalized, err := contacts.NormalizeEmail(email)
	if err != nil {
		return ContactAck{}, err
	}
	if err := c.cache.SetEmergencyEmail(ctx, normalized); err != nil {
		return ContactAck{}, fmt.Errorf("client: save emergency email locally: %w", err)
	}

	var ack ContactAck
	if err := c.do(ctx, http.MethodPost, "/emergency-email", map[string]string{"emergencyEmail": normalized}, &ack); err != nil {
		c.logger.Debug("emergency email endpoint unavailable, kept locally", "error", err)
		return ContactAck{Message: contactSavedLocally, EmergencyEmail: normalized, Offline: true}, nil
	}
	return ack, nil
}

// PlanResult is a generated wellness plan.
type PlanResult struct {
	Plan    plan.Plan
	Offline bool
}

// GenerateWellnessPlan asks the server for a plan, or returns the offline plan.
func (c *Client) GenerateWellnessPlan(ctx context.Context) PlanResult {
	var p plan.Plan
	if err := c.do(ctx, http.MethodPost, "/plan", nil, &p); err == nil && p.Text != "" {
		if len(p.Days) == 0 {
			p.Days = plan.ParseDays(p.Text)
		}
		return PlanResult{Plan: p}
	} else if err != nil {
		c.logger.Debug("plan endpoint unavailable, using offline plan", "error", err)
	}
	return PlanResult{
		Plan:    plan.Plan{Text: OfflinePlan, Days: plan.ParseDays(OfflinePlan), Fallback: true},
		Offline: true,
	}
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Error   string `json:"error"`
}

// Login exchanges credentials for a token and remembers it. Unlike the data
// calls it has no offline fallback.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return "", fmt.Errorf("client: login: %w", err)
	}
	if !resp.Success || resp.Token == "" {
		return "", fmt.Errorf("client: login rejected: %s", resp.Error)
	}
	c.token = resp.Token
	return resp.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %d %s", ErrStatus, method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}
