// Package plan builds a three-day wellness plan from a user's mood and chat
// history.
package plan

import (
	"fmt"
	"strings"

	"github.com/wellnessbuddy/wellness-platform/internal/chat"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
)

const (
	// recentMessages is how many chat messages feed the summary.
	recentMessages  = 10
	defaultCategory = "Neutral"
)

// Summary condenses a user's history for the plan prompt.
type Summary struct {
	Text           string
	LatestCategory string
	AverageScore   float64
}

// Summarize renders mood entries (oldest first) and the last few chat messages.
func Summarize(entries []mood.Entry, messages []chat.Message) Summary {
	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString("No mood history.")
	} else {
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = fmt.Sprintf("%s: %d (%s)", e.Date, e.Score, e.Category)
		}
		b.WriteString("User mood scores: ")
		b.WriteString(strings.Join(parts, ", "))
	}

	if len(messages) == 0 {
		b.WriteString(". No recent messages.")
	} else {
		if len(messages) > recentMessages {
			messages = messages[len(messages)-recentMessages:]
		}
		texts := make([]string, len(messages))
		for i, m := range messages {
			texts[i] = m.Content
		}
		b.WriteString(". Recent messages: ")
		b.WriteString(strings.Join(texts, ", "))
	}

	s := Summary{Text: b.String(), LatestCategory: defaultCategory}
	if n := len(entries); n > 0 {
		s.LatestCategory = entries[n-1].Category
		var sum int
		for _, e := range entries {
			sum += e.Score
		}
		s.AverageScore = float64(sum) / float64(n)
	}
	return s
}

// Prompt builds the request text for the generator.
func (s Summary) Prompt() string {
	return fmt.Sprintf("Generate a 3-day wellness plan for a teen. %s. Latest mood: %s.", s.Text, s.LatestCategory)
}

// Sentiment maps the average mood score onto [-1, 1]; no history is neutral.
func (s Summary) Sentiment() float64 {
	if s.AverageScore == 0 {
		return 0
	}
	mid := float64(mood.MinScore+mood.MaxScore) / 2
	half := float64(mood.MaxScore-mood.MinScore) / 2
	return (s.AverageScore - mid) / half
}
