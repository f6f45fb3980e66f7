// ABOUTME: Prometheus counters and histograms for cache and API activity.
// ABOUTME: Uses a private registry so the CLI can report its own numbers.
package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	namespace = "jetgym"
	subsystem = "client"
)

type Manager struct {
	registry *prometheus.Registry

	// counters
	CounterCacheHits        prometheus.Counter
	CounterCacheMisses      prometheus.Counter
	CounterCacheExpirations prometheus.Counter
	CounterCacheWrites      prometheus.Counter
	CounterCacheErrors      prometheus.Counter
	CounterAPIRequests      *prometheus.CounterVec
	CounterFallbacks        *prometheus.CounterVec

	// histograms
	HistAPIRequestDuration *prometheus.HistogramVec
}

// NewTestManager is how tests get metrics: each call registers on a fresh
// private registry, so counters start at zero and managers never collide.
func NewTestManager() *Manager {
	return NewManager(prometheus.NewRegistry())
}

// NewManager registers every metric on reg. Registering twice on one
// registry panics.
func NewManager(reg *prometheus.Registry) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		CounterCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Cache reads that returned a fresh entry",
		}),
		CounterCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Cache reads that found nothing usable",
		}),
		CounterCacheExpirations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_expirations_total",
			Help:      "Entries removed because they were stale",
		}),
		CounterCacheWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_writes_total",
			Help:      "Entries written to the cache",
		}),
		CounterCacheErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_errors_total",
			Help:      "Store failures and undecodable entries",
		}),
		CounterAPIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "api_requests_total",
			Help:      "Requests sent to the backend",
		}, []string{"method", "status"}),
		CounterFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "offline_fallbacks_total",
			Help:      "Results computed locally because the backend failed",
		}, []string{"resource"}),
		HistAPIRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of backend requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
	}
}

// Registry exposes the underlying registry, e.g. for a /metrics handler.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Sample is one flattened series value.
type Sample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Snapshot gathers every series into a flat, name-sorted list. Histograms
// report their observation count.
func (m *Manager) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Value: metricValue(mf.GetType(), metric)}
			if pairs := metric.GetLabel(); len(pairs) > 0 {
				s.Labels = make(map[string]string, len(pairs))
				for _, lp := range pairs {
					s.Labels[lp.GetName()] = lp.GetValue()
				}
			}
			samples = append(samples, s)
		}
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}

// Value returns the summed value of every series named name.
func (m *Manager) Value(name string) float64 {
	samples, err := m.Snapshot()
	if err != nil {
		return 0
	}
	var total float64
	for _, s := range samples {
		if s.Name == name {
			total += s.Value
		}
	}
	return total
}

func metricValue(t dto.MetricType, metric *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(metric.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}
