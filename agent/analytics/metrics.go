package analytics

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK               = "ok"
	outcomeNoData           = "no_data"
	outcomeStoreMissing     = "store_missing"
	outcomeTranslationError = "translation_error"
	outcomeExecutionError   = "execution_error"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insurance_analytics_queries_total",
			Help: "Total tool invocations by outcome.",
		},
		[]string{"outcome"},
	)

	resultRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insurance_analytics_result_rows",
			Help:    "Result set sizes for successful queries.",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 500},
		},
	)
)

func init() {
	prometheus.MustRegister(queriesTotal, resultRows)
}
