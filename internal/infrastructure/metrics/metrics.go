package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookshelf"

// Metrics gom các collector của API và worker.
// Mọi method đều nil-safe để test có thể truyền nil.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// DedupResolutions đếm kết quả resolve theo entity (author, title) và outcome (exact, fuzzy, created, none, error)
	DedupResolutions *prometheus.CounterVec

	// ExistenceChecks đếm kết quả tra cache review theo state (present, absent, unknown)
	ExistenceChecks *prometheus.CounterVec

	EventsPublished     *prometheus.CounterVec
	FeedEventsProcessed *prometheus.CounterVec
	DuplicateAuthors    prometheus.Gauge
	CoverMirrors        *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DedupResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_resolutions_total",
			Help:      "Name resolutions by entity and outcome",
		}, []string{"entity", "outcome"}),
		ExistenceChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_existence_checks_total",
			Help:      "Review existence cache lookups by state",
		}, []string{"state"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published by topic and status",
		}, []string{"topic", "status"}),
		FeedEventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_events_processed_total",
			Help:      "Events consumed by the feed generator by status",
		}, []string{"status"}),
		DuplicateAuthors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicate_author_pairs",
			Help:      "Author pairs above the similarity threshold found by the last audit",
		}),
		CoverMirrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cover_mirrors_total",
			Help:      "Cover mirroring jobs by status",
		}, []string{"status"}),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordResolution(entity, outcome string) {
	if m == nil {
		return
	}
	m.DedupResolutions.WithLabelValues(entity, outcome).Inc()
}

func (m *Metrics) RecordExistenceCheck(state string) {
	if m == nil {
		return
	}
	m.ExistenceChecks.WithLabelValues(state).Inc()
}

func (m *Metrics) RecordPublish(topic string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsPublished.WithLabelValues(topic, status).Inc()
}

func (m *Metrics) RecordFeedEvent(status string) {
	if m == nil {
		return
	}
	m.FeedEventsProcessed.WithLabelValues(status).Inc()
}

func (m *Metrics) SetDuplicateAuthors(n int) {
	if m == nil {
		return
	}
	m.DuplicateAuthors.Set(float64(n))
}

func (m *Metrics) RecordCoverMirror(status string) {
	if m == nil {
		return
	}
	m.CoverMirrors.WithLabelValues(status).Inc()
}
