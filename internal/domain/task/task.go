// Package task describes units of asynchronous work and the runner that executes them.
package task

import (
	"context"
	"errors"
)

var (
	ErrUnknownKind  = errors.New("unknown task kind")
	ErrEmptyGroup   = errors.New("task group has no units")
	ErrUnknownGroup = errors.New("unknown task group")
)

type Kind string

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further attempt will be made.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

type Unit struct {
	Kind    Kind
	Payload []byte
}

type UnitHandle struct {
	ID string
}

type GroupHandle struct {
	ID   string
	Size int
}

type Task struct {
	ID          string
	GroupID     string
	DependsOn   string
	Kind        Kind
	Payload     []byte
	Status      Status
	Attempts    int
	MaxAttempts int
	Result      []byte
	Error       string
}

// Runner schedules units of work. Units of one group carry no ordering between them;
// a unit submitted with SubmitAfter starts only once every member of the group is terminal,
// whatever the outcome.
type Runner interface {
	Submit(ctx context.Context, unit Unit) (UnitHandle, error)
	SubmitGroup(ctx context.Context, units []Unit) (GroupHandle, error)
	SubmitAfter(ctx context.Context, unit Unit, dependsOn GroupHandle) (UnitHandle, error)
	ListByGroup(ctx context.Context, groupID string) ([]Task, error)
}

// ChainSubmitter is implemented by runners that can queue a group and a unit
// gated on it as one operation. Either both are queued or neither is.
type ChainSubmitter interface {
	SubmitGroupThen(ctx context.Context, units []Unit, then Unit) (GroupHandle, UnitHandle, error)
}

type Handler interface {
	Handle(ctx context.Context, t Task) ([]byte, error)
}

type HandlerFunc func(ctx context.Context, t Task) ([]byte, error)

func (f HandlerFunc) Handle(ctx context.Context, t Task) ([]byte, error) {
	return f(ctx, t)
}

type Handlers map[Kind]Handler

func (h Handlers) Lookup(kind Kind) (Handler, error) {
	handler, ok := h[kind]
	if !ok || handler == nil {
		return nil, ErrUnknownKind
	}
	return handler, nil
}
