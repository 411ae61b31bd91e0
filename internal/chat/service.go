package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wellnessbuddy/wellness-platform/internal/crisis"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// ErrEmptyMessage is returned when the user sends only whitespace.
var ErrEmptyMessage = errors.New("chat: message is empty")

const (
	defaultContextTurns = 10
	defaultMaxTokens    = 300
	defaultTemperature  = 0.7
)

// CrisisChecker scans a message and escalates it when needed.
type CrisisChecker interface {
	Check(ctx context.Context, userID, text string) crisis.Outcome
}

// Recorder observes chat traffic.
type Recorder interface {
	ObserveChatMessage(provider, status string)
}

// Reply is the assistant's answer to one user message.
type Reply struct {
	Response  string        `json:"response"`
	Crisis    crisis.Signal `json:"crisis"`
	Notice    string        `json:"notice,omitempty"`
	Sentiment float64       `json:"sentiment"`
	Fallback  bool          `json:"fallback"`
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	LLM          LLMClient
	Provider     string
	Model        string
	History      HistoryStore
	Crisis       CrisisChecker
	Metrics      Recorder
	Logger       *logging.Logger
	ContextTurns int
	Now          func() time.Time
}

// Service answers chat messages.
type Service struct {
	llm          LLMClient
	provider     string
	model        string
	history      HistoryStore
	crisis       CrisisChecker
	metrics      Recorder
	logger       *logging.Logger
	contextTurns int
	now          func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.History == nil {
		cfg.History = NewInMemoryHistoryStore()
	}
	if cfg.ContextTurns <= 0 {
		cfg.ContextTurns = defaultContextTurns
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Provider == "" {
		cfg.Provider = "none"
		if named, ok := cfg.LLM.(interface{ Provider() string }); ok {
			cfg.Provider = named.Provider()
		}
	}
	return &Service{
		llm:          cfg.LLM,
		provider:     cfg.Provider,
		model:        cfg.Model,
		history:      cfg.History,
		crisis:       cfg.Crisis,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		contextTurns: cfg.ContextTurns,
		now:          cfg.Now,
	}
}

// Send records the user's message, asks the model for a reply, appends the
// coping suggestion and any crisis notice, and records the reply.
func (s *Service) Send(ctx context.Context, userID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	userMsg := Message{Role: RoleUser, Content: text, CreatedAt: s.now().UTC()}
	if err := s.history.Append(ctx, userID, userMsg); err != nil {
		s.logger.Warn("failed to store user message", "error", err, "user_id", userID)
	}

	score := Sentiment(text)
	reply := Reply{Sentiment: score}

	answer, status := s.complete(ctx, userID, text, score)
	if status != "ok" {
		answer = CannedReply
		reply.Fallback = true
	}
	if s.metrics != nil {
		s.metrics.ObserveChatMessage(s.provider, status)
	}

	var notice string
	if s.crisis != nil {
		outcome := s.crisis.Check(ctx, userID, text)
		reply.Crisis = outcome.Signal
		notice = outcome.Notice
	} else {
		reply.Crisis = crisis.Scan(text)
	}
	reply.Notice = notice
	reply.Response = joinReply(answer, Suggestion(score), notice)

	assistantMsg := Message{Role: RoleAssistant, Content: reply.Response, CreatedAt: s.now().UTC()}
	if err := s.history.Append(ctx, userID, assistantMsg); err != nil {
		s.logger.Warn("failed to store assistant reply", "error", err, "user_id", userID)
	}
	return reply, nil
}

// History returns up to limit recent messages for userID.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]Message, error) {
	return s.history.Load(ctx, userID, limit)
}

func (s *Service) complete(ctx context.Context, userID, text string, score float64) (string, string) {
	if s.llm == nil {
		return "", "unavailable"
	}

	messages, err := s.history.Load(ctx, userID, s.contextTurns)
	if err != nil || len(messages) == 0 {
		messages = []Message{{Role: RoleUser, Content: text}}
	}

	resp, err := s.llm.Complete(ctx, LLMRequest{
		Model:       s.model,
		System:      SystemPrompt(score),
		Messages:    messages,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		s.logger.Error("llm completion failed", "error", err, "user_id", userID, "provider", s.provider)
		return "", "error"
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", "empty"
	}
	return resp.Text, "ok"
}
