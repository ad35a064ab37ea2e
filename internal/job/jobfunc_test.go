package job

import (
	"context"
	"errors"
	"testing"
)

func TestJobFunc_RunsClosure(t *testing.T) {
	t.Parallel()
	ran := false
	j := New(func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !ran {
		t.Fatal("closure did not run")
	}
}

func TestJobFunc_PropagatesError(t *testing.T) {
	t.Parallel()
	want := errors.New("persist failed")
	j := New(func(ctx context.Context) error { return want })
	if err := j.Run(context.Background()); !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
}

func TestJobFunc_NilFunc(t *testing.T) {
	t.Parallel()
	j := New(nil)
	if err := j.Run(context.Background()); !errors.Is(err, ErrNilJobFunc) {
		t.Fatalf("expected ErrNilJobFunc, got %v", err)
	}
}
