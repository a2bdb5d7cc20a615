package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/bookkeeper/internal/domain"
)

// Metrics holds all Prometheus metrics. It implements
// usecase.MetricsRecorder.
type Metrics struct {
	// Ledger metrics
	AccountsRegistered *prometheus.CounterVec
	EntriesRecorded    *prometheus.CounterVec
	EntriesRejected    *prometheus.CounterVec
	EntryPostings      prometheus.Histogram
	EntryDuration      prometheus.Histogram
	PeriodsClosed      prometheus.Counter
	ClosingPostings    prometheus.Histogram

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits prometheus.Counter

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishFailures prometheus.Counter
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		AccountsRegistered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeeper_accounts_registered_total",
				Help: "Total number of accounts registered by classification",
			},
			[]string{"classification"},
		),
		EntriesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeeper_entries_recorded_total",
				Help: "Total number of journal entries recorded by kind",
			},
			[]string{"kind"},
		),
		EntriesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeeper_entries_rejected_total",
				Help: "Total number of rejected journal entries by reason",
			},
			[]string{"reason"},
		),
		EntryPostings: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookkeeper_entry_postings",
			Help:    "Number of postings per recorded entry",
			Buckets: []float64{2, 3, 4, 6, 10, 20, 50, 100},
		}),
		EntryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookkeeper_entry_duration_seconds",
			Help:    "Duration of entry recording",
			Buckets: prometheus.DefBuckets,
		}),
		PeriodsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeper_periods_closed_total",
			Help: "Total number of accounting periods closed",
		}),
		ClosingPostings: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookkeeper_closing_postings",
			Help:    "Number of postings in closing entries",
			Buckets: []float64{0, 2, 5, 10, 25, 50, 100, 250},
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeeper_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookkeeper_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bookkeeper_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeper_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		// Cache metrics
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeeper_cache_lookups_total",
				Help: "Balance cache lookups by result",
			},
			[]string{"result"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeeper_events_published_total",
				Help: "Outbox events published by type",
			},
			[]string{"event_type"},
		),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeper_event_publish_failures_total",
			Help: "Outbox events that failed to publish",
		}),
	}
}

func (m *Metrics) AccountRegistered(classification domain.Classification) {
	m.AccountsRegistered.WithLabelValues(string(classification)).Inc()
}

func (m *Metrics) EntryRecorded(kind domain.EntryKind, postings int, duration time.Duration) {
	m.EntriesRecorded.WithLabelValues(string(kind)).Inc()
	m.EntryPostings.Observe(float64(postings))
	m.EntryDuration.Observe(duration.Seconds())
}

func (m *Metrics) EntryRejected(reason string) {
	m.EntriesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) PeriodClosed(postings int) {
	m.PeriodsClosed.Inc()
	m.ClosingPostings.Observe(float64(postings))
}

// CacheHit and CacheMiss count balance cache lookups.
func (m *Metrics) CacheHit()  { m.CacheLookups.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.CacheLookups.WithLabelValues("miss").Inc() }

// EventPublished counts a delivered outbox event.
func (m *Metrics) EventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// EventFailed counts an outbox event that could not be delivered.
func (m *Metrics) EventFailed() {
	m.PublishFailures.Inc()
}
