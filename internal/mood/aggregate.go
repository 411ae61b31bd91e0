package mood

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Range selects the window of history shown in charts.
type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeAll   Range = "all"
)

// ParseRange maps a query value onto a Range, defaulting to week.
func ParseRange(s string) Range {
	switch Range(strings.ToLower(strings.TrimSpace(s))) {
	case RangeMonth:
		return RangeMonth
	case RangeAll:
		return RangeAll
	default:
		return RangeWeek
	}
}

// Days is the number of calendar days (ending today) the range covers; 0 means unbounded.
func (r Range) Days() int {
	switch r {
	case RangeWeek:
		return 7
	case RangeMonth:
		return 30
	default:
		return 0
	}
}

// Point is an entry after date parsing and score clamping.
type Point struct {
	Day      time.Time
	Score    int
	Category string
}

// Series is chart-ready data; all three slices are index-aligned.
type Series struct {
	Labels     []string `json:"labels"`
	Scores     []int    `json:"scores"`
	Categories []string `json:"categories"`
}

// Stats summarises the scores in a window.
type Stats struct {
	Average float64 `json:"average"`
	Max     int     `json:"max"`
	Min     int     `json:"min"`
	Count   int     `json:"count"`
}

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// WeekdayBucket accumulates scores that fell on one weekday.
type WeekdayBucket struct {
	Weekday string  `json:"weekday"`
	Sum     int     `json:"sum"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// WeeklyProfile holds one bucket per weekday, Monday first.
type WeeklyProfile [7]WeekdayBucket

// Report bundles everything the charts view needs for one range.
type Report struct {
	Range      Range           `json:"range"`
	Series     Series          `json:"series"`
	Stats      Stats           `json:"stats"`
	Categories []CategoryCount `json:"categories"`
	Weekly     WeeklyProfile   `json:"weekly"`
}

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Aggregate filters, sorts and summarises entries relative to today.
// Entries with unparsable dates are skipped and scores are clamped to 1..5.
func Aggregate(entries []Entry, rng Range, today time.Time) Report {
	points := Filter(entries, rng, today)
	return Report{
		Range:      rng,
		Series:     BuildSeries(points, rng),
		Stats:      Summarize(points),
		Categories: Distribution(points),
		Weekly:     Weekly(points),
	}
}

// Filter keeps the entries inside rng and returns them sorted ascending by day.
// Entries sharing a day keep their input order.
func Filter(entries []Entry, rng Range, today time.Time) []Point {
	days := rng.Days()
	cutoff := Day(today).AddDate(0, 0, -(days - 1))

	points := make([]Point, 0, len(entries))
	for _, e := range entries {
		day, ok := ParseDate(e.Date)
		if !ok {
			continue
		}
		if days > 0 && day.Before(cutoff) {
			continue
		}
		points = append(points, Point{
			Day:      day,
			Score:    ClampScore(e.Score),
			Category: e.Category,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Day.Before(points[j].Day)
	})
	return points
}

// BuildSeries labels points for display: weekday names for the week view,
// "Jan 2" dates otherwise.
func BuildSeries(points []Point, rng Range) Series {
	s := Series{
		Labels:     make([]string, 0, len(points)),
		Scores:     make([]int, 0, len(points)),
		Categories: make([]string, 0, len(points)),
	}
	for _, p := range points {
		s.Labels = append(s.Labels, label(p.Day, rng))
		s.Scores = append(s.Scores, p.Score)
		s.Categories = append(s.Categories, p.Category)
	}
	return s
}

func label(day time.Time, rng Range) string {
	if rng == RangeWeek {
		return day.Format("Mon")
	}
	return day.Format("Jan 2")
}

// Summarize computes average (one decimal), max, min and count.
func Summarize(points []Point) Stats {
	if len(points) == 0 {
		return Stats{}
	}
	stats := Stats{Max: points[0].Score, Min: points[0].Score, Count: len(points)}
	sum := 0
	for _, p := range points {
		sum += p.Score
		if p.Score > stats.Max {
			stats.Max = p.Score
		}
		if p.Score < stats.Min {
			stats.Min = p.Score
		}
	}
	stats.Average = roundTenth(float64(sum) / float64(len(points)))
	return stats
}

// Distribution counts categories in first-seen order.
func Distribution(points []Point) []CategoryCount {
	out := []CategoryCount{}
	index := map[string]int{}
	for _, p := range points {
		if i, ok := index[p.Category]; ok {
			out[i].Count++
			continue
		}
		index[p.Category] = len(out)
		out = append(out, CategoryCount{Category: p.Category, Count: 1})
	}
	return out
}

// Weekly buckets scores by weekday. Empty buckets report an average of 0.
func Weekly(points []Point) WeeklyProfile {
	var profile WeeklyProfile
	for i := range profile {
		profile[i].Weekday = weekdayNames[i]
	}
	for _, p := range points {
		b := &profile[mondayIndex(p.Day)]
		b.Sum += p.Score
		b.Count++
	}
	for i := range profile {
		if profile[i].Count > 0 {
			profile[i].Average = roundTenth(float64(profile[i].Sum) / float64(profile[i].Count))
		}
	}
	return profile
}

func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
