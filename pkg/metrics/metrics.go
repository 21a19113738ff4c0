// Package metrics exposes Prometheus counters for moderation activity.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pancyguard"

var (
	// Unwarns counts unwarn invocations by outcome
	Unwarns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unwarns_total",
		Help:      "Unwarn invocations by outcome.",
	}, []string{"outcome"})

	// WarnsIssued counts warnings created through the warn path
	WarnsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "warns_issued_total",
		Help:      "Warnings issued.",
	})

	// GroupRequests counts per-group ban/unban requests by result
	GroupRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "group_requests_total",
		Help:      "Per-group ban and unban requests sent to the transport.",
	}, []string{"action", "result"})

	// Notifications counts best-effort direct messages by result
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Best-effort direct messages, sent or dropped.",
	}, []string{"result"})
)

// Result label helper for success/failure pairs
func Result(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

// Handler returns the HTTP handler serving the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// Counts reads every pancyguard counter from g, keyed by the metric name
// without namespace followed by its label values, e.g.
// "unwarns_total:removed" or "group_requests_total:unban:failed".
func Counts(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]float64)
	for _, mf := range families {
		name, ok := strings.CutPrefix(mf.GetName(), namespace+"_")
		if !ok {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			key := name
			for _, l := range m.GetLabel() {
				key += ":" + l.GetValue()
			}
			counts[key] += m.GetCounter().GetValue()
		}
	}
	return counts, nil
}
