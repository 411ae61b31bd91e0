package mood

import (
	"math"
	"math/rand"
	"time"
)

// DefaultSampleDays is the history length used when callers pass no count.
const DefaultSampleDays = 30

var (
	lowCategories  = []string{CategorySad, CategoryAnxious, CategoryStressed}
	midCategories  = []string{CategoryCalm, CategoryTired}
	highCategories = []string{CategoryHappy, CategoryExcited, CategoryEnergetic}
)

// SampleGenerator produces demo mood history for empty states. Rand must
// return values in [0,1).
type SampleGenerator struct {
	Rand func() float64
}

// NewSampleGenerator returns a generator with a fixed seed so output is reproducible.
func NewSampleGenerator(seed int64) *SampleGenerator {
	r := rand.New(rand.NewSource(seed))
	return &SampleGenerator{Rand: r.Float64}
}

// NewRandomSampleGenerator returns a generator backed by the global random source.
func NewRandomSampleGenerator() *SampleGenerator {
	return &SampleGenerator{Rand: rand.Float64}
}

// Generate returns one entry per calendar day, oldest first, ending today.
// Weekends get a higher base score and a slow weekly wave is layered on top.
func (g *SampleGenerator) Generate(days int, today time.Time) []Entry {
	if days <= 0 {
		days = DefaultSampleDays
	}
	next := g.Rand
	if next == nil {
		next = rand.Float64
	}

	end := Day(today)
	out := make([]Entry, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)

		base := 3.0
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			base = 3.5
		}
		noise := (next() - 0.5) * 1.5
		trend := math.Sin(float64(i)/7) * 0.5
		score := ClampScore(int(math.Round(base + noise + trend)))

		out = append(out, Entry{
			Date:     FormatDate(day),
			Score:    score,
			Category: pick(categoriesFor(score), next()),
		})
	}
	return out
}

func categoriesFor(score int) []string {
	switch {
	case score <= 2:
		return lowCategories
	case score == 3:
		return midCategories
	default:
		return highCategories
	}
}

func pick(options []string, r float64) string {
	idx := int(r * float64(len(options)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(options) {
		idx = len(options) - 1
	}
	return options[idx]
}
