package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Snapshot flattens the wellness_* counters in g into "name{labels}" -> value
// for the ops stats endpoint. Histograms report their sample count.
func Snapshot(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("metrics: gather: %w", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, "wellness_") {
			continue
		}
		for _, metric := range mf.GetMetric() {
			key := name + labelSuffix(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out[key] = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				out[key] = metric.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				out[key+"_count"] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return out, nil
}

func labelSuffix(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
