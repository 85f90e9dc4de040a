package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamedaybot/pkg/logx"
)

func TestFirstErrorCancelsContext(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), logx.Nop())
	boom := errors.New("boom")

	s.Go("failing", func(context.Context) error { return boom })
	s.Go("long-lived", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !errors.Is(s.Err(), boom) {
		t.Fatalf("Err = %v, want boom", s.Err())
	}
	if s.Context().Err() == nil {
		t.Fatal("context not cancelled after failure")
	}
}

func TestPanicIsRecoveredAndRecorded(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), logx.Nop())
	s.Go("panicky", func(context.Context) error { panic("oh no") })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if s.Err() == nil {
		t.Fatal("panic not recorded as error")
	}
}

func TestErrorAfterCancelIsIgnored(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), logx.Nop())
	s.Go("shutdown-error", func(ctx context.Context) error {
		<-ctx.Done()
		return errors.New("closed during shutdown")
	})

	s.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if s.Err() != nil {
		t.Fatalf("Err = %v, want nil for error during shutdown", s.Err())
	}
}

func TestWaitTimesOut(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), logx.Nop())
	release := make(chan struct{})
	s.Go("stuck", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline exceeded", err)
	}
	close(release)
}
