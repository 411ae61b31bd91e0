package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WellnessMetrics exposes counters/histograms for mood, chat, and crisis flows.
type WellnessMetrics struct {
	moodEntries  *prometheus.CounterVec
	chatMessages *prometheus.CounterVec
	crisisTotal  *prometheus.CounterVec
	llmLatency   *prometheus.HistogramVec
}

func NewWellnessMetrics(reg prometheus.Registerer) *WellnessMetrics {
	m := &WellnessMetrics{
		moodEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "mood_entries_total",
			Help:      "Mood entries recorded",
		}, []string{"source"}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "chat_messages_total",
			Help:      "Chat messages answered, by LLM provider and outcome",
		}, []string{"provider", "status"}),
		crisisTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "crisis_detections_total",
			Help:      "Crisis keywords detected in chat messages",
		}, []string{"keyword", "notified"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wellness",
			Name:      "llm_latency_seconds",
			Help:      "Latency of LLM completions",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"provider", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.moodEntries, m.chatMessages, m.crisisTotal, m.llmLatency)
	return m
}

func (m *WellnessMetrics) ObserveMoodEntry(source string) {
	if m == nil {
		return
	}
	m.moodEntries.WithLabelValues(source).Inc()
}

func (m *WellnessMetrics) ObserveChatMessage(provider, status string) {
	if m == nil {
		return
	}
	m.chatMessages.WithLabelValues(provider, status).Inc()
}

func (m *WellnessMetrics) ObserveCrisis(keyword string, notified bool) {
	if m == nil {
		return
	}
	m.crisisTotal.WithLabelValues(keyword, strconv.FormatBool(notified)).Inc()
}

func (m *WellnessMetrics) ObserveLLMLatency(provider, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(provider, status).Observe(d.Seconds())
}
