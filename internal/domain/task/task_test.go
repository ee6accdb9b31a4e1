package task_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	cases := map[task.Status]bool{
		task.StatusQueued:    false,
		task.StatusRunning:   false,
		task.StatusSucceeded: true,
		task.StatusFailed:    true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Fatalf("%s: expected terminal=%v, got %v", status, want, got)
		}
	}
}

func TestHandlersLookup(t *testing.T) {
	t.Parallel()

	handlers := task.Handlers{
		"known": task.HandlerFunc(func(ctx context.Context, tk task.Task) ([]byte, error) {
			return []byte("ok"), nil
		}),
	}

	h, err := handlers.Lookup("known")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out, err := h.Handle(context.Background(), task.Task{})
	if err != nil || string(out) != "ok" {
		t.Fatalf("unexpected handler result: %q %v", out, err)
	}

	if _, err := handlers.Lookup("missing"); !errors.Is(err, task.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
