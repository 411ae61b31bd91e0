package plan

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wellnessbuddy/wellness-platform/internal/chat"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// FallbackText is returned when no generator could produce a plan.
const FallbackText = "Day 1: Walk, meditation.\nDay 2: Exercise, talk to a friend.\nDay 3: Creative activity, relax."

// Day is one day of a plan.
type Day struct {
	Day        int      `json:"day"`
	Activities []string `json:"activities"`
}

// Plan is a generated wellness plan.
type Plan struct {
	Text     string `json:"plan"`
	Days     []Day  `json:"days,omitempty"`
	Fallback bool   `json:"fallback"`
}

// Request is what a Generator is asked to plan for.
type Request struct {
	Prompt    string
	Sentiment float64
}

// Generator turns a prompt into a plan.
type Generator interface {
	Generate(ctx context.Context, req Request) (Plan, error)
}

// MoodSource lists a user's mood entries.
type MoodSource interface {
	List(ctx context.Context, userID string) ([]mood.Entry, error)
}

// HistorySource loads a user's recent chat messages.
type HistorySource interface {
	Load(ctx context.Context, userID string, limit int) ([]chat.Message, error)
}

// Planner gathers history and asks a Generator for a plan.
type Planner struct {
	moods     MoodSource
	history   HistorySource
	generator Generator
	logger    *logging.Logger
}

func NewPlanner(moods MoodSource, history HistorySource, generator Generator, logger *logging.Logger) *Planner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Planner{moods: moods, history: history, generator: generator, logger: logger}
}

// Generate returns a plan for userID. Generator failures fall back to
// FallbackText; only history lookups that fail outright return an error.
func (p *Planner) Generate(ctx context.Context, userID string) (Plan, error) {
	var entries []mood.Entry
	if p.moods != nil {
		var err error
		entries, err = p.moods.List(ctx, userID)
		if err != nil {
			return Plan{}, fmt.Errorf("plan: load moods: %w", err)
		}
	}
	var messages []chat.Message
	if p.history != nil {
		var err error
		messages, err = p.history.Load(ctx, userID, recentMessages)
		if err != nil {
			p.logger.Warn("plan: chat history unavailable", "error", err, "user_id", userID)
		}
	}

	summary := Summarize(entries, messages)
	if p.generator == nil {
		return Fallback(), nil
	}

	plan, err := p.generator.Generate(ctx, Request{Prompt: summary.Prompt(), Sentiment: summary.Sentiment()})
	if err != nil || strings.TrimSpace(plan.Text) == "" {
		if err == nil {
			err = errors.New("empty plan")
		}
		p.logger.Warn("plan generation failed, using fallback", "error", err, "user_id", userID)
		return Fallback(), nil
	}
	if len(plan.Days) == 0 {
		plan.Days = ParseDays(plan.Text)
	}
	return plan, nil
}

// Fallback returns the default plan.
func Fallback() Plan {
	return Plan{Text: FallbackText, Days: ParseDays(FallbackText), Fallback: true}
}

var dayLine = regexp.MustCompile(`(?i)^\W*day\s+(\d+)\s*[:\-–]+[\s*_]*(.+)$`)

// ParseDays extracts "Day N: a, b." lines from free text.
func ParseDays(text string) []Day {
	var days []Day
	for _, line := range strings.Split(text, "\n") {
		m := dayLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		var acts []string
		for _, a := range strings.Split(strings.TrimRight(m[2], ". "), ",") {
			if a = strings.TrimSpace(a); a != "" {
				acts = append(acts, a)
			}
		}
		days = append(days, Day{Day: n, Activities: acts})
	}
	return days
}

// Render formats days as "Day N: a, b." lines.
func Render(days []Day) string {
	lines := make([]string, 0, len(days))
	for _, d := range days {
		lines = append(lines, fmt.Sprintf("Day %d: %s.", d.Day, strings.TrimRight(strings.Join(d.Activities, ", "), ".")))
	}
	return strings.Join(lines, "\n")
}
