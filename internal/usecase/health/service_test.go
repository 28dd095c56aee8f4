package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubIndex struct {
	ready bool
	err   error
	calls int
}

func (s *stubIndex) IndexReady(context.Context) (bool, error) {
	s.calls++
	return s.ready, s.err
}

func up(context.Context) error { return nil }

func TestCheck(t *testing.T) {
	down := pingerFunc(func(context.Context) error { return errors.New("conn refused") })

	tests := []struct {
		name       string
		db         Pinger
		index      *stubIndex
		wantStatus Status
		wantChecks map[string]CheckResult
		wantProbes int
	}{
		{
			name:       "all healthy",
			db:         pingerFunc(up),
			index:      &stubIndex{ready: true},
			wantStatus: Healthy,
			wantChecks: map[string]CheckResult{ComponentDatabase: CheckOK, ComponentIndex: CheckOK},
			wantProbes: 1,
		},
		{
			name:       "database down skips index probe",
			db:         down,
			index:      &stubIndex{ready: true},
			wantStatus: Degraded,
			wantChecks: map[string]CheckResult{ComponentDatabase: CheckError, ComponentIndex: CheckError},
		},
		{
			name:       "index missing",
			db:         pingerFunc(up),
			index:      &stubIndex{},
			wantStatus: Degraded,
			wantChecks: map[string]CheckResult{ComponentDatabase: CheckOK, ComponentIndex: CheckMissing},
			wantProbes: 1,
		},
		{
			name:       "index error",
			db:         pingerFunc(up),
			index:      &stubIndex{err: errors.New("timeout")},
			wantStatus: Degraded,
			wantChecks: map[string]CheckResult{ComponentDatabase: CheckOK, ComponentIndex: CheckError},
			wantProbes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.db, tt.index).Check(context.Background())
			assert.Equal(t, tt.wantStatus, r.Status)
			assert.Equal(t, tt.wantChecks, r.Checks)
			assert.Equal(t, tt.wantStatus == Healthy, r.Healthy())
			assert.Equal(t, tt.wantProbes, tt.index.calls)
		})
	}
}

func TestCheck_NoIndexProbe(t *testing.T) {
	r := New(pingerFunc(up), nil).Check(context.Background())
	assert.True(t, r.Healthy())
	assert.Equal(t, map[string]string{ComponentDatabase: "ok"}, r.Strings())
}

func TestCheck_ProbeTimeout(t *testing.T) {
	slow := pingerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	r := New(slow, nil).WithTimeout(10 * time.Millisecond).Check(context.Background())
	assert.Equal(t, CheckError, r.Checks[ComponentDatabase])
}
