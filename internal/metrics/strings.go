package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Parse outcomes for QueryParseTotal.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeUnparseable = "unparseable"
	OutcomeConflict    = "conflict"
	OutcomeNumber      = "number"
)

// String store metrics.
var (
	QueryParseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "nlquery",
			Name:      "parse_total",
			Help:      "Natural-language query translations by outcome",
		},
		[]string{"outcome"},
	)

	StringsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "strings_created_total",
			Help:      "Total number of strings analyzed and stored",
		},
	)

	StringsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "strings_deleted_total",
			Help:      "Total number of stored strings deleted",
		},
	)
)

var registerOnce sync.Once

// RegisterStringMetrics registers the string store metrics. Called once from main.
func RegisterStringMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(QueryParseTotal)
		prometheus.MustRegister(StringsCreatedTotal)
		prometheus.MustRegister(StringsDeletedTotal)
	})
}
