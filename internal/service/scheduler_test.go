package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingRunner struct {
	calls atomic.Int32
}

func (r *countingRunner) RunAndPublish(context.Context) (*RunResult, error) {
	r.calls.Add(1)
	return &RunResult{}, nil
}

func TestSchedulerDisabled(t *testing.T) {
	runner := &countingRunner{}
	done := make(chan struct{})
	go func() {
		NewScheduler(runner, 0, quietLogger()).Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start must return immediately when interval is zero")
	}
	if runner.calls.Load() != 0 {
		t.Error("runner must not be called")
	}
}

func TestSchedulerTicksUntilCancelled(t *testing.T) {
	runner := &countingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewScheduler(runner, 10*time.Millisecond, quietLogger()).Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for runner.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("runner called %d times", runner.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
