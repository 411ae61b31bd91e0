package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockConverseAPI is satisfied by *bedrockruntime.Client.
type BedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient talks to Bedrock through the Converse API so any chat model
// hosted there can back the buddy.
type BedrockClient struct {
	api     BedrockConverseAPI
	modelID string
}

func NewBedrockClient(api BedrockConverseAPI, modelID string) *BedrockClient {
	if api == nil {
		panic("chat: nil bedrock api")
	}
	return &BedrockClient{api: api, modelID: strings.TrimSpace(modelID)}
}

func (c *BedrockClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.modelID
	}
	if model == "" {
		return LLMResponse{}, errors.New("chat: bedrock model id is required")
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:         aws.String(model),
		System:          textBlocks(req.System),
		InferenceConfig: inferenceConfig(req),
	}
	for _, m := range req.Messages {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		if m.Role == RoleSystem {
			input.System = append(input.System, &brtypes.SystemContentBlockMemberText{Value: text})
			continue
		}
		role, ok := converseRoles[m.Role]
		if !ok {
			return LLMResponse{}, fmt.Errorf("chat: unsupported role %q", m.Role)
		}
		input.Messages = append(input.Messages, brtypes.Message{
			Role:    role,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: text}},
		})
	}

	out, err := c.api.Converse(ctx, input)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("chat: bedrock: %w", err)
	}
	return converseResponse(out)
}

var converseRoles = map[string]brtypes.ConversationRole{
	RoleUser:      brtypes.ConversationRoleUser,
	RoleAssistant: brtypes.ConversationRoleAssistant,
}

func textBlocks(parts []string) []brtypes.SystemContentBlock {
	var blocks []brtypes.SystemContentBlock
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			blocks = append(blocks, &brtypes.SystemContentBlockMemberText{Value: p})
		}
	}
	return blocks
}

// inferenceConfig returns nil when every knob is left at the provider default.
// A negative temperature counts as unset.
func inferenceConfig(req LLMRequest) *brtypes.InferenceConfiguration {
	var cfg brtypes.InferenceConfiguration
	set := false
	if req.MaxTokens > 0 {
		cfg.MaxTokens, set = aws.Int32(req.MaxTokens), true
	}
	if req.Temperature >= 0 {
		cfg.Temperature, set = aws.Float32(req.Temperature), true
	}
	if req.TopP != 0 {
		cfg.TopP, set = aws.Float32(req.TopP), true
	}
	if !set {
		return nil
	}
	return &cfg
}

func converseResponse(out *bedrockruntime.ConverseOutput) (LLMResponse, error) {
	if out == nil {
		return LLMResponse{}, errors.New("chat: bedrock returned no output")
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return LLMResponse{}, errors.New("chat: bedrock output is not a message")
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*brtypes.ContentBlockMemberText); ok {
			sb.WriteString(t.Value)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return LLMResponse{}, errors.New("chat: bedrock reply was empty")
	}

	resp := LLMResponse{Text: text, StopReason: string(out.StopReason)}
	if u := out.Usage; u != nil {
		resp.Usage = TokenUsage{
			InputTokens:  aws.ToInt32(u.InputTokens),
			OutputTokens: aws.ToInt32(u.OutputTokens),
			TotalTokens:  aws.ToInt32(u.TotalTokens),
		}
	}
	return resp, nil
}
