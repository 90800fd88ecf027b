package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-platform/internal/services"
	"solar-platform/pkg/logging"
)

type countingRunner struct {
	calls int32
	err   error
}

func (r *countingRunner) Run(ctx context.Context, req services.IngestionRequest) (*services.PipelineResult, error) {
	atomic.AddInt32(&r.calls, 1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	return &services.PipelineResult{}, r.err
}

func TestSchedulerRunsImmediately(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, services.IngestionRequest{Name: "London"}, time.Hour, time.Minute, logging.Discard())
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runner.calls) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerSurvivesFailedRun(t *testing.T) {
	runner := &countingRunner{err: errors.New("power api server error")}
	s := New(runner, services.IngestionRequest{}, time.Hour, time.Minute, logging.Discard())
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runner.calls) >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRejectsZeroInterval(t *testing.T) {
	s := New(&countingRunner{}, services.IngestionRequest{}, 0, 0, logging.Discard())
	assert.Error(t, s.Start())
}
