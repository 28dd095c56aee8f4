package stranalyzer

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// operation names a client method in logs and metric labels.
type operation string

const (
	opPing    operation = "ping"
	opAnalyze operation = "analyze"
	opGet     operation = "get"
	opDelete  operation = "delete"
	opList    operation = "list"
	opCount   operation = "count"
	opReindex operation = "reindex"
	opQuery   operation = "query"
)

// Outcomes separate rejected calls from store failures; only outcomeError is a fault.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeExists   = "exists"
	outcomeInvalid  = "invalid"
	outcomeConflict = "conflict"
	outcomeError    = "error"
)

// outcomeOf classifies err. Conflicts are checked before parse failures because a
// conflicting query is also a parse failure.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrAlreadyExists):
		return outcomeExists
	case errors.Is(err, ErrFilterConflict), errors.Is(err, ErrConflictingFilters):
		return outcomeConflict
	case errors.Is(err, ErrInvalidValue), errors.Is(err, errQueryParsing):
		return outcomeInvalid
	default:
		return outcomeError
	}
}

// clientMetrics are registered on the caller's registerer, never the global one.
type clientMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stranalyzer",
			Subsystem: "client",
			Name:      "operations_total",
			Help:      "Client operations by method and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stranalyzer",
			Subsystem: "client",
			Name:      "operation_duration_seconds",
			Help:      "Client operation duration in seconds, store round trips included.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or adopts the collector already registered under its name
// so that several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("stranalyzer: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("stranalyzer: metric already registered with type %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer records every client operation. A nil observer is a no-op.
type observer struct {
	logger  *zap.Logger
	metrics *clientMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	if logger == nil && reg == nil {
		return nil, nil
	}
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe is deferred by client methods with the named error result.
func (o *observer) observe(op operation, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	outcome := outcomeOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(string(op), outcome).Inc()
		o.metrics.duration.WithLabelValues(string(op)).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", string(op)),
		zap.String("outcome", outcome),
		zap.Duration("duration", dur),
	}
	switch outcome {
	case outcomeOK:
		o.logger.Debug("operation completed", fields...)
	case outcomeError:
		o.logger.Warn("operation failed", append(fields, zap.Error(err))...)
	default:
		o.logger.Debug("operation rejected", append(fields, zap.Error(err))...)
	}
}
