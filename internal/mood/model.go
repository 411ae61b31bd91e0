package mood

import (
	"strings"
	"time"
)

// Mood categories offered by the tracker.
const (
	CategoryHappy     = "Happy"
	CategorySad       = "Sad"
	CategoryAnxious   = "Anxious"
	CategoryCalm      = "Calm"
	CategoryStressed  = "Stressed"
	CategoryExcited   = "Excited"
	CategoryTired     = "Tired"
	CategoryEnergetic = "Energetic"
)

// Categories lists every category in display order.
var Categories = []string{
	CategoryHappy,
	CategorySad,
	CategoryAnxious,
	CategoryCalm,
	CategoryStressed,
	CategoryExcited,
	CategoryTired,
	CategoryEnergetic,
}

const (
	MinScore = 1
	MaxScore = 5

	dateLayout = "2006-01-02"
)

// Entry is one mood record as stored or received over the wire. Date is a
// calendar date ("2006-01-02"); RFC3339 timestamps are tolerated on input.
type Entry struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}

// CreateRequest is the payload for recording a mood.
type CreateRequest struct {
	Score    int    `json:"score"`
	Category string `json:"category"`
	Date     string `json:"date,omitempty"`
}

// Validate checks the request before it reaches storage.
func (r *CreateRequest) Validate() error {
	if r.Score < MinScore || r.Score > MaxScore {
		return ErrInvalidScore
	}
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(r.Date) != "" {
		if _, ok := ParseDate(r.Date); !ok {
			return ErrInvalidDate
		}
	}
	return nil
}

// ClampScore forces a score into [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ParseDate reads a calendar date, accepting either "2006-01-02" or an
// RFC3339 timestamp. The result is midnight UTC of that day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t), true
	}
	return time.Time{}, false
}

// Day truncates t to midnight of its UTC calendar date. Stored entries are
// dated in UTC, so windows computed from a local clock must agree with them.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a day in the wire layout.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
