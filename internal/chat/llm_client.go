package chat

import (
	"context"
	"strings"
)

// TokenUsage reports provider token accounting when available.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest is one completion call. An empty Model selects the client's
// default; a negative Temperature leaves the provider default in place.
type LLMRequest struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// systemText joins the system blocks for providers that take a single
// instruction string.
func (r LLMRequest) systemText() string {
	return strings.TrimSpace(strings.Join(r.System, "\n\n"))
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient completes a conversation with a model provider.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
