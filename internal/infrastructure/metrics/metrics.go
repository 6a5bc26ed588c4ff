package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"llm-evaluator/internal/domain/chat"
	"llm-evaluator/internal/domain/conversation"
)

// Evaluator metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evaluator",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evaluator",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Fan-out size distribution
	FanoutSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "evaluator",
			Subsystem: "chat",
			Name:      "fanout_size",
			Help:      "Number of models selected per chat mutation",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		},
	)

	// Token counters
	TokensOutputTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evaluator",
			Subsystem: "chat",
			Name:      "tokens_output_total",
			Help:      "Total output tokens generated",
		},
		[]string{"model"},
	)

	TokensInputTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evaluator",
			Subsystem: "chat",
			Name:      "tokens_input_total",
			Help:      "Total input tokens consumed",
		},
		[]string{"model"},
	)

	// Time to first token
	FirstTokenDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evaluator",
			Subsystem: "chat",
			Name:      "first_token_seconds",
			Help:      "Time to first token per completion",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"model"},
	)

	// Generation throughput
	TokensPerSecond = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evaluator",
			Subsystem: "chat",
			Name:      "tokens_per_second",
			Help:      "Generation throughput per completion",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 200},
		},
		[]string{"model"},
	)

	// Completion failures
	CompletionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evaluator",
			Subsystem: "chat",
			Name:      "completion_failures_total",
			Help:      "Total per-model completion failures",
		},
		[]string{"model", "reason"},
	)

	// Model sync runs
	ModelSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evaluator",
			Subsystem: "sync",
			Name:      "model_sync_total",
			Help:      "Provider model sync attempts",
		},
		[]string{"provider", "status"},
	)
)

// RecordRequest records an HTTP request with duration
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordModelSync records a provider sync run outcome
func RecordModelSync(provider, status string) {
	if provider == "" {
		provider = "unknown"
	}
	ModelSyncTotal.WithLabelValues(provider, status).Inc()
}

// ChatRecorder feeds dispatch outcomes into the collectors above. It
// satisfies the chat domain's recorder interface.
type ChatRecorder struct{}

func NewChatRecorder() *ChatRecorder {
	return &ChatRecorder{}
}

func (ChatRecorder) ObserveFanout(size int) {
	FanoutSize.Observe(float64(size))
}

func (ChatRecorder) ObserveCompletion(modelPublicID string, meta conversation.GenerationMetadata) {
	TokensOutputTotal.WithLabelValues(modelPublicID).Add(float64(meta.OutputTokens))
	if meta.InputTokens != nil {
		TokensInputTotal.WithLabelValues(modelPublicID).Add(float64(*meta.InputTokens))
	}
	FirstTokenDuration.WithLabelValues(modelPublicID).Observe(meta.TimeToFirstToken)
	TokensPerSecond.WithLabelValues(modelPublicID).Observe(meta.TokensPerSecond)
}

func (ChatRecorder) ObserveFailure(modelPublicID string, kind chat.FailureKind) {
	CompletionFailuresTotal.WithLabelValues(modelPublicID, string(kind)).Inc()
}
