package chat

import (
	"context"
	"time"
)

// LatencyRecorder observes LLM call latency.
type LatencyRecorder interface {
	ObserveLLMLatency(provider, status string, d time.Duration)
}

// InstrumentedClient records latency for every call to the wrapped client.
type InstrumentedClient struct {
	provider string
	inner    LLMClient
	metrics  LatencyRecorder
}

func NewInstrumentedClient(provider string, inner LLMClient, metrics LatencyRecorder) *InstrumentedClient {
	return &InstrumentedClient{provider: provider, inner: inner, metrics: metrics}
}

// Provider names the wrapped backend.
func (c *InstrumentedClient) Provider() string { return c.provider }

func (c *InstrumentedClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	start := time.Now()
	resp, err := c.inner.Complete(ctx, req)
	if c.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.metrics.ObserveLLMLatency(c.provider, status, time.Since(start))
	}
	return resp, err
}
