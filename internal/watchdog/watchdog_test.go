package watchdog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"speech-relay/internal/watchdog"
)

func TestRun_ReturnsResult(t *testing.T) {
	got, err := watchdog.Run(context.Background(), time.Second, func(context.Context) (string, error) {
		return "done", nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got != "done" {
		t.Errorf("result: got %q, want done", got)
	}
}

func TestRun_PropagatesError(t *testing.T) {
	want := errors.New("boom")
	_, err := watchdog.Run(context.Background(), time.Second, func(context.Context) (int, error) {
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("error: got %v, want %v", err, want)
	}
}

func TestRun_ReturnsAtDeadlineWhenCallIgnoresContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := watchdog.Run(context.Background(), 50*time.Millisecond, func(context.Context) (string, error) {
		<-release
		return "too late", nil
	})
	elapsed := time.Since(start)

	if !errors.Is(err, watchdog.ErrTimeout) {
		t.Fatalf("error: got %v, want ErrTimeout", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error should also match context.DeadlineExceeded: %v", err)
	}
	if elapsed > time.Second {
		t.Errorf("returned after %s, want close to 50ms", elapsed)
	}
}

func TestRun_DeadlineDoesNotLeakIntoNextCall(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	_, err := watchdog.Run(context.Background(), 20*time.Millisecond, func(context.Context) (int, error) {
		<-release
		return 0, nil
	})
	if !errors.Is(err, watchdog.ErrTimeout) {
		t.Fatalf("first call: got %v, want ErrTimeout", err)
	}

	got, err := watchdog.Run(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		time.Sleep(50 * time.Millisecond)
		return 42, ctx.Err()
	})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if got != 42 {
		t.Errorf("second call result: got %d, want 42", got)
	}
}

func TestRun_CancelsContextOnReturn(t *testing.T) {
	var inner context.Context
	_, err := watchdog.Run(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		inner = ctx
		return 1, nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	select {
	case <-inner.Done():
	default:
		t.Error("guarded context still live after Run returned")
	}
}

func TestRun_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := watchdog.Run(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: got %v, want context.Canceled", err)
	}
	if errors.Is(err, watchdog.ErrTimeout) {
		t.Error("cancellation must not be reported as a timeout")
	}
}

func TestAwait_RecoversPanic(t *testing.T) {
	_, err := watchdog.Await(context.Background(), func(context.Context) (int, error) {
		panic("bad")
	})
	if err == nil {
		t.Fatal("expected error from panicking call")
	}
}
