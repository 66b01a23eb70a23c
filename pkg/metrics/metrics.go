// Package metrics exposes prometheus collectors of the ingestion pipeline.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umputun/feedkeeper/pkg/domain"
)

const namespace = "feedkeeper"

// Metrics holds pipeline collectors registered on a private registry
type Metrics struct {
	reg *prometheus.Registry

	batches       *prometheus.CounterVec
	batchDuration prometheus.Histogram
	feedOutcomes  *prometheus.CounterVec
	itemsInserted prometheus.Counter
	itemsDeleted  prometheus.Counter
	pageScrapes   *prometheus.CounterVec
	iconsUpdated  prometheus.Counter
}

// New makes metrics with go runtime and process collectors included
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "batches_total", Help: "ingestion batch runs by status",
		}, []string{"status"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "batch_duration_seconds", Help: "duration of ingestion batch runs",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		feedOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "feed_fetches_total", Help: "feed fetch outcomes by event",
		}, []string{"event"}),
		itemsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "items_inserted_total", Help: "new items stored",
		}),
		itemsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "items_deleted_total", Help: "items removed by retention cleanup",
		}),
		pageScrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "page_image_scrapes_total", Help: "article page image scrapes by result",
		}, []string{"result"}),
		iconsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "icons_updated_total", Help: "feed icons resolved and stored",
		}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.batches, m.batchDuration, m.feedOutcomes, m.itemsInserted, m.itemsDeleted, m.pageScrapes, m.iconsUpdated,
	)
	return m
}

// Handler returns the http handler serving the registry in prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Batch records a completed batch run
func (m *Metrics) Batch(res domain.BatchResult) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues("completed").Inc()
	m.batchDuration.Observe(res.Duration.Seconds())
	m.itemsInserted.Add(float64(res.Inserted))
}

// BatchSkipped records a batch run refused because another one was in progress
func (m *Metrics) BatchSkipped() {
	if m == nil {
		return
	}
	m.batches.WithLabelValues("skipped").Inc()
}

// FeedOutcome counts a single feed fetch outcome
func (m *Metrics) FeedOutcome(event string) {
	if m == nil {
		return
	}
	m.feedOutcomes.WithLabelValues(event).Inc()
}

// ItemsDeleted counts items removed by the retention cleanup
func (m *Metrics) ItemsDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.itemsDeleted.Add(float64(n))
}

// PageScrape counts an article page image scrape, result is one of "hit", "miss" or "error"
func (m *Metrics) PageScrape(result string) {
	if m == nil {
		return
	}
	m.pageScrapes.WithLabelValues(result).Inc()
}

// IconsUpdated counts stored feed icons
func (m *Metrics) IconsUpdated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.iconsUpdated.Add(float64(n))
}
