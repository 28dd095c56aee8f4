// Package health aggregates liveness of the database and the string index.
package health

import (
	"context"
	"time"
)

// Status is the overall verdict.
type Status string

// Overall verdicts.
const (
	Healthy  Status = "ok"
	Degraded Status = "degraded"
)

// CheckResult is the verdict for one component.
type CheckResult string

// Component verdicts. CheckMissing means reachable but not provisioned.
const (
	CheckOK      CheckResult = "ok"
	CheckError   CheckResult = "error"
	CheckMissing CheckResult = "missing"
)

// Component names used as Report.Checks keys.
const (
	ComponentDatabase = "database"
	ComponentIndex    = "index"
)

const defaultProbeTimeout = 2 * time.Second

// Report is the outcome of one Check.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Healthy reports whether every component passed.
func (r Report) Healthy() bool { return r.Status == Healthy }

// Strings returns the checks with plain string values, for serialization.
func (r Report) Strings() map[string]string {
	out := make(map[string]string, len(r.Checks))
	for name, res := range r.Checks {
		out[name] = string(res)
	}
	return out
}

// Service runs the probes.
type Service struct {
	db      Pinger
	index   IndexProbe
	timeout time.Duration
}

// New creates a Service. A nil index skips the index component.
func New(db Pinger, index IndexProbe) *Service {
	return &Service{db: db, index: index, timeout: defaultProbeTimeout}
}

// WithTimeout bounds each probe. Non-positive values are ignored.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check probes the database, then the index. An unreachable database fails the
// index check without probing it.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult, 2)}

	dbErr := s.probe(ctx, s.db.Ping)
	r.set(ComponentDatabase, resultOf(dbErr))

	if s.index == nil {
		return r
	}
	if dbErr != nil {
		r.set(ComponentIndex, CheckError)
		return r
	}

	var ready bool
	err := s.probe(ctx, func(ctx context.Context) error {
		var err error
		ready, err = s.index.IndexReady(ctx)
		return err
	})
	switch {
	case err != nil:
		r.set(ComponentIndex, CheckError)
	case !ready:
		r.set(ComponentIndex, CheckMissing)
	default:
		r.set(ComponentIndex, CheckOK)
	}
	return r
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

func (r *Report) set(component string, res CheckResult) {
	r.Checks[component] = res
	if res != CheckOK {
		r.Status = Degraded
	}
}

func resultOf(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
