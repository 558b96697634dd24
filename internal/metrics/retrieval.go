package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and embedding Prometheus metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carebase",
			Name:      "retrieval_requests_total",
			Help:      "Total retrieval requests by outcome",
		},
		[]string{"outcome"}, // "exact" / "semantic" / "no_match" / "empty_corpus"
	)

	ExactMatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carebase",
			Name:      "exact_match_total",
			Help:      "Exact customer matches by detector method",
		},
		[]string{"method"}, // "email" / "phone" / "name"
	)

	CorpusReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carebase",
			Name:      "corpus_reloads_total",
			Help:      "Corpus snapshot loads by result",
		},
		[]string{"result"}, // "success" / "error"
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "carebase",
			Name:      "corpus_documents",
			Help:      "Documents in the current corpus snapshot",
		},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carebase",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "carebase",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carebase",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carebase",
			Name:      "generation_requests_total",
			Help:      "Total number of answer generation requests",
		},
		[]string{"model", "status"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers the domain metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalRequestsTotal)
	prometheus.MustRegister(ExactMatchTotal)
	prometheus.MustRegister(CorpusReloadsTotal)
	prometheus.MustRegister(CorpusDocuments)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	retrievalMetricsRegistered = true
}
