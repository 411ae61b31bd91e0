package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiClient is the Google AI Studio provider.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("chat: gemini api key is required")
	}
	if modelID = strings.TrimSpace(modelID); modelID == "" {
		modelID = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelID: modelID}, nil
}

// Complete replays earlier turns as chat history and sends the final
// message as the new user turn.
func (c *GeminiClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	history, prompt, err := geminiTurns(req.Messages)
	if err != nil {
		return LLMResponse{}, err
	}

	name := c.modelID
	if m := strings.TrimSpace(req.Model); m != "" {
		name = m
	}
	model := c.client.GenerativeModel(name)
	if sys := req.systemText(); sys != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(sys))
	}
	if req.Temperature >= 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.TopP > 0 {
		model.SetTopP(req.TopP)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}

	session := model.StartChat()
	session.History = history
	resp, err := session.SendMessage(ctx, prompt)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("chat: gemini: %w", err)
	}
	return geminiResponse(resp)
}

// geminiTurns maps messages onto Gemini's user/model roles. System turns are
// carried by SystemInstruction instead and blank turns are skipped.
func geminiTurns(msgs []Message) ([]*genai.Content, genai.Text, error) {
	if len(msgs) == 0 {
		return nil, "", errors.New("chat: gemini requires at least one message")
	}
	last := len(msgs) - 1
	prompt := strings.TrimSpace(msgs[last].Content)
	if prompt == "" {
		return nil, "", errors.New("chat: gemini prompt is empty")
	}

	var history []*genai.Content
	for _, m := range msgs[:last] {
		text := strings.TrimSpace(m.Content)
		if text == "" || m.Role == RoleSystem {
			continue
		}
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(text)}})
	}
	return history, genai.Text(prompt), nil
}

func geminiResponse(resp *genai.GenerateContentResponse) (LLMResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return LLMResponse{}, errors.New("chat: gemini returned no candidates")
	}
	cand := resp.Candidates[0]
	var sb strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return LLMResponse{}, fmt.Errorf("chat: gemini reply was empty (finish reason %s)", cand.FinishReason)
	}

	out := LLMResponse{Text: text, StopReason: cand.FinishReason.String()}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = TokenUsage{
			InputTokens:  u.PromptTokenCount,
			OutputTokens: u.CandidatesTokenCount,
			TotalTokens:  u.TotalTokenCount,
		}
	}
	return out, nil
}

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
