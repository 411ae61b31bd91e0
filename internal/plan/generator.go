package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"

	"github.com/wellnessbuddy/wellness-platform/internal/chat"
)

const planInstructions = "Format the plan as exactly three lines, one per day, each starting with \"Day N:\" followed by a short comma-separated list of activities."

// LLMGenerator asks any chat model for a free-text plan.
type LLMGenerator struct {
	client    chat.LLMClient
	model     string
	maxTokens int32
}

func NewLLMGenerator(client chat.LLMClient, model string) *LLMGenerator {
	return &LLMGenerator{client: client, model: model, maxTokens: 400}
}

func (g *LLMGenerator) Generate(ctx context.Context, req Request) (Plan, error) {
	if g.client == nil {
		return Plan{}, errors.New("plan: llm client not configured")
	}
	resp, err := g.client.Complete(ctx, chat.LLMRequest{
		Model:       g.model,
		System:      append(chat.SystemPrompt(req.Sentiment), planInstructions),
		Messages:    []chat.Message{{Role: chat.RoleUser, Content: req.Prompt}},
		MaxTokens:   g.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return Plan{}, fmt.Errorf("plan: completion failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	return Plan{Text: text, Days: ParseDays(text)}, nil
}

type structuredPlan struct {
	Days []structuredDay `json:"days" jsonschema:"required,description=Exactly three days in order"`
}

type structuredDay struct {
	Day        int      `json:"day" jsonschema:"required,description=Day number starting at 1"`
	Activities []string `json:"activities" jsonschema:"required,description=Two or three short activities"`
}

var planSchema = GenerateSchema[structuredPlan]()

// StructuredGenerator asks OpenAI for a plan constrained by a JSON schema.
type StructuredGenerator struct {
	client *openai.Client
	model  string
}

func NewStructuredGenerator(client *openai.Client, model string) *StructuredGenerator {
	return &StructuredGenerator{client: client, model: model}
}

func (g *StructuredGenerator) Generate(ctx context.Context, req Request) (Plan, error) {
	if g.client == nil {
		return Plan{}, errors.New("plan: openai client is nil")
	}
	if g.model == "" {
		return Plan{}, errors.New("plan: openai model is empty")
	}

	params := responses.ResponseNewParams{
		Model:           g.model,
		MaxOutputTokens: openai.Int(800),
		Instructions:    openai.String(strings.Join(append(chat.SystemPrompt(req.Sentiment), planInstructions), "\n\n")),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.Prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "WellnessPlan",
					Schema:      planSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Three-day wellness plan"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return Plan{}, fmt.Errorf("plan: openai request failed: %w", err)
	}

	var out structuredPlan
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.OutputText())), &out); err != nil {
		return Plan{}, fmt.Errorf("plan: decode structured plan: %w", err)
	}
	if len(out.Days) == 0 {
		return Plan{}, errors.New("plan: structured plan has no days")
	}

	days := make([]Day, 0, len(out.Days))
	for _, d := range out.Days {
		days = append(days, Day{Day: d.Day, Activities: d.Activities})
	}
	return Plan{Text: Render(days), Days: days}, nil
}

// GenerateSchema reflects T into a JSON schema accepted by OpenAI strict mode.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	strictify(m)
	return m
}

// strictify marks every object closed with all properties required.
func strictify(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				strictify(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		strictify(items)
	}
}
