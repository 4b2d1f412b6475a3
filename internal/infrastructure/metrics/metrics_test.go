package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/api/books/:id", 200, 15*time.Millisecond)
	m.RecordResolution("author", "fuzzy")
	m.RecordResolution("author", "fuzzy")
	m.RecordExistenceCheck("absent")
	m.RecordPublish("reviews-events", nil)
	m.RecordPublish("reviews-events", errors.New("broker down"))
	m.RecordFeedEvent("ok")
	m.SetDuplicateAuthors(3)
	m.RecordCoverMirror("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/books/:id", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DedupResolutions.WithLabelValues("author", "fuzzy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExistenceChecks.WithLabelValues("absent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("reviews-events", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("reviews-events", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedEventsProcessed.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DuplicateAuthors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CoverMirrors.WithLabelValues("ok")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.RecordResolution("author", "exact")
		m.RecordExistenceCheck("present")
		m.RecordPublish("posts-events", nil)
		m.RecordFeedEvent("ok")
		m.SetDuplicateAuthors(1)
		m.RecordCoverMirror("error")
	})
}
