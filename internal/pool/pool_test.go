package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_ExactlyOneOutcomePerInput(t *testing.T) {
	inputs := make([]int, 200)
	for i := range inputs {
		inputs[i] = i
	}

	var inflight, maxInflight atomic.Int32
	outcomes := Run(context.Background(), inputs, Options{Concurrency: 8}, func(_ context.Context, n int) (string, error) {
		cur := inflight.Add(1)
		for {
			prev := maxInflight.Load()
			if cur <= prev || maxInflight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inflight.Add(-1)
		if n%7 == 0 {
			return "", fmt.Errorf("input %d failed", n)
		}
		return fmt.Sprint(n), nil
	})

	if len(outcomes) != len(inputs) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(inputs))
	}
	seen := make(map[int]bool)
	failures := 0
	for _, o := range outcomes {
		if seen[o.Input] {
			t.Errorf("duplicate outcome for input %d", o.Input)
		}
		seen[o.Input] = true
		if o.Err != nil {
			failures++
			continue
		}
		if o.Value != fmt.Sprint(o.Input) {
			t.Errorf("input %d: value %q", o.Input, o.Value)
		}
	}
	if failures != 29 { // multiples of 7 in [0, 200)
		t.Errorf("failures = %d, want 29", failures)
	}
	if got := maxInflight.Load(); got > 8 {
		t.Errorf("max inflight = %d, want <= 8", got)
	}
}

func TestRun_PanicIsolated(t *testing.T) {
	outcomes := Run(context.Background(), []string{"ok", "boom", "fine"}, Options{Concurrency: 2}, func(_ context.Context, s string) (int, error) {
		if s == "boom" {
			panic("kaboom")
		}
		return len(s), nil
	})
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Input == "boom" && !errors.Is(o.Err, ErrPanic) {
			t.Errorf("panicking task err = %v, want ErrPanic", o.Err)
		}
		if o.Input != "boom" && o.Err != nil {
			t.Errorf("sibling %q failed: %v", o.Input, o.Err)
		}
	}
}

func TestRun_EmptyInput(t *testing.T) {
	outcomes := Run(context.Background(), nil, Options{Concurrency: 4}, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	if len(outcomes) != 0 {
		t.Fatalf("got %d outcomes for empty input", len(outcomes))
	}
}

func TestRun_CancelledContextStillReportsEveryInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	outcomes := Run(ctx, []int{1, 2, 3, 4}, Options{Concurrency: 2}, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})
	if len(outcomes) != 4 {
		t.Fatalf("got %d outcomes, want 4", len(outcomes))
	}
	for _, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("input %d: err = %v, want context.Canceled", o.Input, o.Err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("worker ran %d times after cancellation", calls.Load())
	}
}

func TestRun_ProgressCalledPerOutcome(t *testing.T) {
	var last atomic.Int32
	var calls atomic.Int32
	Run(context.Background(), []int{1, 2, 3, 4, 5}, Options{
		Concurrency: 3,
		Progress: func(done, total int) {
			calls.Add(1)
			last.Store(int32(done))
			if total != 5 {
				t.Errorf("total = %d, want 5", total)
			}
		},
	}, func(_ context.Context, n int) (int, error) { return n, nil })

	if calls.Load() != 5 || last.Load() != 5 {
		t.Errorf("progress calls=%d last=%d, want 5 and 5", calls.Load(), last.Load())
	}
}

func TestRun_ThrottlePausesAtCheckpoints(t *testing.T) {
	start := time.Now()
	outcomes := Run(context.Background(), []int{1, 2, 3, 4, 5, 6}, Options{
		Concurrency: 1,
		PauseEvery:  2,
		Pause:       30 * time.Millisecond,
	}, func(_ context.Context, n int) (int, error) { return n, nil })

	if len(outcomes) != 6 {
		t.Fatalf("got %d outcomes, want 6", len(outcomes))
	}
	// Checkpoints after tasks 2 and 4 delay tasks 3 and 5.
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("elapsed %v, want >= 60ms of throttle pauses", elapsed)
	}
}

func TestThrottle_CountsPauses(t *testing.T) {
	th := NewThrottle(3, time.Millisecond)
	for i := 0; i < 10; i++ {
		th.Done()
	}
	if th.Completed() != 10 {
		t.Errorf("completed = %d, want 10", th.Completed())
	}
	if th.Pauses() != 3 {
		t.Errorf("pauses = %d, want 3", th.Pauses())
	}
}

func TestThrottle_Disabled(t *testing.T) {
	th := NewThrottle(0, time.Second)
	for i := 0; i < 5; i++ {
		th.Done()
	}
	if th.Pauses() != 0 {
		t.Errorf("pauses = %d, want 0 when disabled", th.Pauses())
	}
	if err := th.Wait(context.Background()); err != nil {
		t.Errorf("Wait: %v", err)
	}
}

func TestThrottle_WaitHonorsContext(t *testing.T) {
	th := NewThrottle(1, time.Hour)
	th.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := th.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v, want deadline exceeded", err)
	}
}
