package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounts(t *testing.T) {
	reg := prometheus.NewRegistry()

	unwarns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unwarns_total",
	}, []string{"outcome"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "group_requests_total",
	}, []string{"action", "result"})
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "unrelated_total"})
	reg.MustRegister(unwarns, requests, other)

	unwarns.WithLabelValues("removed").Add(2)
	unwarns.WithLabelValues("noop").Inc()
	requests.WithLabelValues("unban", "failed").Inc()
	other.Inc()

	counts, err := Counts(reg)
	require.NoError(t, err)

	assert.Equal(t, 2.0, counts["unwarns_total:removed"])
	assert.Equal(t, 1.0, counts["unwarns_total:noop"])
	assert.Equal(t, 1.0, counts["group_requests_total:unban:failed"])
	assert.NotContains(t, counts, "unrelated_total")
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "failed", Result(errors.New("boom")))
}
