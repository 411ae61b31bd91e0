package chat

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiTurns(t *testing.T) {
	history, prompt, err := geminiTurns([]Message{
		{Role: RoleSystem, Content: "be gentle"},
		{Role: RoleUser, Content: "rough day"},
		{Role: RoleAssistant, Content: "I'm here for you."},
		{Role: RoleUser, Content: " "},
		{Role: RoleUser, Content: " thanks "},
	})
	require.NoError(t, err)
	assert.Equal(t, genai.Text("thanks"), prompt)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("I'm here for you.")}, history[1].Parts)

	_, _, err = geminiTurns(nil)
	assert.Error(t, err)
	_, _, err = geminiTurns([]Message{{Role: RoleUser, Content: "  "}})
	assert.ErrorContains(t, err, "prompt is empty")
}

func TestGeminiResponse(t *testing.T) {
	resp, err := geminiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: []genai.Part{genai.Text("Take a "), genai.Text("breath. ")}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 7, CandidatesTokenCount: 3, TotalTokenCount: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, "Take a breath.", resp.Text)
	assert.Equal(t, int32(10), resp.Usage.TotalTokens)
	assert.NotEmpty(t, resp.StopReason)

	_, err = geminiResponse(&genai.GenerateContentResponse{})
	assert.ErrorContains(t, err, "no candidates")

	_, err = geminiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	})
	assert.ErrorContains(t, err, "empty")
}
