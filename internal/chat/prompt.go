package chat

import "strings"

const (
	// CannedReply is used when no model is reachable.
	CannedReply = "I'm here for you. Could you tell me more?"

	breathingSuggestion = "Try breathing: Inhale 4s, hold 4s, exhale 4s."
	positiveSuggestion  = "Keep up the positivity!"
)

const personaPrompt = `You are Wellness Buddy, an empathetic AI companion for teens. Your personality:
- Warm, caring, and non-judgmental
- Use casual, friendly language appropriate for teens
- Be encouraging and supportive
- Ask thoughtful follow-up questions
- Offer practical, actionable advice
- Use emojis occasionally but not excessively
- Keep responses conversational and not too long (2-3 sentences max)

Respond with empathy and helpful guidance. If they're struggling, offer specific coping strategies. If they're happy, celebrate with them. Always end with a question to keep the conversation flowing naturally.`

// SentimentContext describes the user's mood band for the system prompt.
func SentimentContext(score float64) string {
	switch {
	case score < -0.5:
		return "The user seems to be feeling very negative or distressed. Be extra gentle, empathetic, and offer specific support resources."
	case score < 0:
		return "The user appears to be having a difficult time. Show understanding and offer helpful suggestions."
	case score < 0.5:
		return "The user seems to be in a neutral mood. Be encouraging and ask engaging questions."
	default:
		return "The user appears to be in a positive mood. Celebrate with them and help maintain their positive energy."
	}
}

// SystemPrompt returns the system blocks for a message with the given score.
func SystemPrompt(score float64) []string {
	return []string{personaPrompt, "Sentiment analysis: " + SentimentContext(score)}
}

// Suggestion returns the coping tip appended to every reply.
func Suggestion(score float64) string {
	if score < 0 {
		return breathingSuggestion
	}
	return positiveSuggestion
}

func joinReply(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
