package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the API surface
// and the import engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	batchDuration  *prometheus.HistogramVec
	batchTotal     *prometheus.CounterVec
	rowOutcomes    *prometheus.CounterVec
	lockContention *prometheus.CounterVec
	reviewItems    *prometheus.CounterVec
	fuzzyMatches   prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_batch_duration_seconds",
		Help:    "Wall time of import batch runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"entity_type", "source"})

	batchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_batches_total",
		Help: "Import batch runs by terminal status",
	}, []string{"entity_type", "source", "status"})

	rowOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Import rows by outcome",
	}, []string{"entity_type", "source", "outcome"})

	lockContention := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_lock_contention_total",
		Help: "Import runs rejected because one of the same type was in flight",
	}, []string{"entity_type"})

	reviewItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_items_total",
		Help: "Rows routed to the manual review queue by reason",
	}, []string{"reason"})

	fuzzyMatches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "identity_fuzzy_matches_total",
		Help: "Identity resolutions that fell through to the fuzzy name rule",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		batchDuration, batchTotal, rowOutcomes, lockContention, reviewItems, fuzzyMatches, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		batchDuration:   batchDuration,
		batchTotal:      batchTotal,
		rowOutcomes:     rowOutcomes,
		lockContention:  lockContention,
		reviewItems:     reviewItems,
		fuzzyMatches:    fuzzyMatches,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

// ObserveCacheHit records a cache lookup outcome.
func (m *MetricsService) ObserveCacheHit(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// ObserveBatch records one finished batch run and its row counts.
func (m *MetricsService) ObserveBatch(batch *models.ImportBatch, duration time.Duration) {
	if m == nil || batch == nil {
		return
	}
	entity := string(batch.EntityType)
	source := string(batch.Source)

	m.batchDuration.WithLabelValues(entity, source).Observe(duration.Seconds())
	m.batchTotal.WithLabelValues(entity, source, string(batch.Status)).Inc()

	m.rowOutcomes.WithLabelValues(entity, source, string(models.RowCreated)).Add(float64(batch.RowsCreated))
	m.rowOutcomes.WithLabelValues(entity, source, string(models.RowUpdated)).Add(float64(batch.RowsUpdated))
	m.rowOutcomes.WithLabelValues(entity, source, string(models.RowSkipped)).Add(float64(batch.RowsSkipped))
	m.rowOutcomes.WithLabelValues(entity, source, string(models.RowUnmatched)).Add(float64(batch.RowsUnmatched))
	m.rowOutcomes.WithLabelValues(entity, source, string(models.RowInvalid)).Add(float64(batch.RowsInvalid))
}

// ObserveLockContention records a rejected concurrent import attempt.
func (m *MetricsService) ObserveLockContention(entity models.EntityType) {
	if m == nil {
		return
	}
	m.lockContention.WithLabelValues(string(entity)).Inc()
}

// ObserveReviewItem records a row parked for manual review.
func (m *MetricsService) ObserveReviewItem(reason models.ReviewReason) {
	if m == nil {
		return
	}
	m.reviewItems.WithLabelValues(string(reason)).Inc()
}

// ObserveFuzzyMatch records an auto-accepted fuzzy identity match.
func (m *MetricsService) ObserveFuzzyMatch() {
	if m == nil {
		return
	}
	m.fuzzyMatches.Inc()
}
