package chat

import (
	"context"
	"fmt"

	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// FallbackClient tries a second provider when the first one errors.
type FallbackClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *logging.Logger
}

// NewFallbackClient chains two providers. With a nil fallback the primary's
// errors are returned unchanged.
func NewFallbackClient(primary, fallback LLMClient, logger *logging.Logger) *FallbackClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackClient{primary: primary, fallback: fallback, logger: logger}
}

func (c *FallbackClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, primaryErr := c.primary.Complete(ctx, req)
	switch {
	case primaryErr == nil:
		return resp, nil
	case c.fallback == nil:
		return LLMResponse{}, primaryErr
	case ctx.Err() != nil:
		// caller went away; a second provider would see the same deadline
		return LLMResponse{}, primaryErr
	}

	c.logger.Warn("llm provider failed, trying next", "error", primaryErr)
	resp, err := c.fallback.Complete(ctx, req)
	if err != nil {
		c.logger.Error("llm chain exhausted", "primary_error", primaryErr, "error", err)
		return LLMResponse{}, fmt.Errorf("chat: all providers failed: %w", err)
	}
	return resp, nil
}
