package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient implements LLMClient with the OpenAI Responses API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client. Extra options (base URL, HTTP client) are
// passed through to the SDK.
func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chat: openai api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultOpenAIModel
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIClient{client: &client, model: model}, nil
}

// Client exposes the SDK client for structured-output callers.
func (c *OpenAIClient) Client() *openai.Client { return c.client }

// Model returns the default model id.
func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	input := make([]responses.ResponseInputItemUnionParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		var role responses.EasyInputMessageRole
		switch msg.Role {
		case RoleUser:
			role = responses.EasyInputMessageRoleUser
		case RoleAssistant:
			role = responses.EasyInputMessageRoleAssistant
		case RoleSystem:
			role = responses.EasyInputMessageRoleSystem
		default:
			return LLMResponse{}, fmt.Errorf("chat: unsupported role %q", msg.Role)
		}
		input = append(input, responses.ResponseInputItemParamOfMessage(content, role))
	}
	if len(input) == 0 {
		return LLMResponse{}, errors.New("chat: openai requires at least one message")
	}

	model := req.Model
	if strings.TrimSpace(model) == "" {
		model = c.model
	}
	params := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: input},
	}
	if system := req.systemText(); system != "" {
		params.Instructions = openai.String(system)
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature >= 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(float64(req.TopP))
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("chat: openai completion failed: %w", err)
	}
	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return LLMResponse{}, errors.New("chat: openai returned no text")
	}
	return LLMResponse{
		Text:       text,
		StopReason: string(resp.Status),
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.InputTokens),
			OutputTokens: int32(resp.Usage.OutputTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
	}, nil
}
