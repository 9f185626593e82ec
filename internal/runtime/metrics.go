package runtime

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service's prometheus collectors. A nil *Metrics is valid
// and records nothing, which keeps tests and CLI paths free of registry setup.
type Metrics struct {
	registry *prometheus.Registry

	askRequests       *prometheus.CounterVec
	askLatency        prometheus.Histogram
	ingestDocuments   *prometheus.CounterVec
	ingestChunks      prometheus.Counter
	embeddingRequests *prometheus.CounterVec
	queryLogFailures  prometheus.Counter
	queryLogsPruned   prometheus.Counter
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		askRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opticqa_ask_requests_total",
			Help: "Questions handled, by outcome.",
		}, []string{"outcome"}),
		askLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "opticqa_ask_latency_seconds",
			Help:    "Time from embedding the question to receiving the completion.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		ingestDocuments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opticqa_ingest_documents_total",
			Help: "Document uploads processed, by outcome.",
		}, []string{"outcome"}),
		ingestChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opticqa_ingest_chunks_total",
			Help: "Chunks committed to the vector store.",
		}),
		embeddingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opticqa_embedding_requests_total",
			Help: "Embedding calls, by outcome.",
		}, []string{"outcome"}),
		queryLogFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opticqa_query_log_failures_total",
			Help: "Query log writes that failed and were dropped.",
		}),
		queryLogsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opticqa_query_logs_pruned_total",
			Help: "Query log rows removed by retention.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.askRequests, m.askLatency, m.ingestDocuments, m.ingestChunks,
		m.embeddingRequests, m.queryLogFailures, m.queryLogsPruned,
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAsk(outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.askRequests.WithLabelValues(outcome).Inc()
	if latency > 0 {
		m.askLatency.Observe(latency.Seconds())
	}
}

func (m *Metrics) ObserveIngest(outcome string, chunks int) {
	if m == nil {
		return
	}
	m.ingestDocuments.WithLabelValues(outcome).Inc()
	if chunks > 0 {
		m.ingestChunks.Add(float64(chunks))
	}
}

func (m *Metrics) ObserveEmbedding(outcome string) {
	if m == nil {
		return
	}
	m.embeddingRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) QueryLogFailed() {
	if m == nil {
		return
	}
	m.queryLogFailures.Inc()
}

func (m *Metrics) QueryLogsPruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.queryLogsPruned.Add(float64(n))
}
