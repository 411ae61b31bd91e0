package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wellnessbuddy/wellness-platform/internal/chat"
)

func TestHashUserID_StableHex(t *testing.T) {
	a := HashUserID("user-1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashUserID("user-1"))
	assert.NotEqual(t, a, HashUserID("user-2"))
	assert.NotContains(t, a, "user")
}

func TestScrubPII(t *testing.T) {
	cases := map[string]string{
		"write to mom@example.com tonight": "write to [EMAIL] tonight",
		"call me at (330) 333-2654":        "call me at [PHONE]",
		"text +1 500-555-0002 please":      "text [PHONE] please",
		"slept 8 hours, mood 4 out of 5":   "slept 8 hours, mood 4 out of 5",
		"I had a stressful day":            "I had a stressful day",
	}
	for in, want := range cases {
		assert.Equal(t, want, ScrubPII(in), in)
	}
}

func TestScrubMessages_LeavesInputAlone(t *testing.T) {
	msgs := []chat.Message{
		{Role: chat.RoleUser, Content: "reach me at a@b.com"},
		{Role: chat.RoleAssistant, Content: "Thanks for sharing."},
	}
	out := ScrubMessages(msgs)
	assert.Equal(t, "reach me at [EMAIL]", out[0].Content)
	assert.Equal(t, "Thanks for sharing.", out[1].Content)
	assert.Equal(t, "reach me at a@b.com", msgs[0].Content)
}
