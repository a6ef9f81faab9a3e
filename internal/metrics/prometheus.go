package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qcbot_message_duration_seconds",
			Help:    "Message processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"engine"},
	)

	MessageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcbot_message_total",
			Help: "Total number of chat messages processed",
		},
		[]string{"status"},
	)

	QuestionTypeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcbot_question_type_total",
			Help: "Messages routed per question type",
		},
		[]string{"question"},
	)

	ChartGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qcbot_charts_generated_total",
			Help: "Total chart payloads generated",
		},
	)

	TableGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qcbot_tables_generated_total",
			Help: "Total table payloads generated",
		},
	)

	ProviderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcbot_provider_failures_total",
			Help: "Soft-failed provider calls by kind",
		},
		[]string{"kind"},
	)

	SessionsInitialized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qcbot_sessions_initialized_total",
			Help: "Total chat sessions initialized",
		},
	)

	SessionsReset = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qcbot_sessions_reset_total",
			Help: "Total chat sessions reset",
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcbot_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	DatasetRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qcbot_dataset_records",
			Help: "Number of inspection records loaded",
		},
	)
)

func Init() {
	prometheus.MustRegister(MessageDuration)
	prometheus.MustRegister(MessageTotal)
	prometheus.MustRegister(QuestionTypeTotal)
	prometheus.MustRegister(ChartGenerated)
	prometheus.MustRegister(TableGenerated)
	prometheus.MustRegister(ProviderFailures)
	prometheus.MustRegister(SessionsInitialized)
	prometheus.MustRegister(SessionsReset)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(DatasetRecords)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
