// Package runner holds the in-process task runner used by the CLI and tests.
package runner

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

var (
	_ task.Runner         = (*Inline)(nil)
	_ task.ChainSubmitter = (*Inline)(nil)
)

type outcomeObserver interface {
	ObserveTask(kind task.Kind, status task.Status)
}

type InlineConfig struct {
	Concurrency int
	MaxAttempts int
}

type inlineGroup struct {
	done    chan struct{}
	members []string
}

// Inline runs tasks on goroutines of the current process. Nothing survives a
// restart. A task submitted after a group waits on the group's done channel.
type Inline struct {
	handlers task.Handlers
	observer outcomeObserver
	cfg      InlineConfig
	logger   logrus.FieldLogger

	mu     sync.Mutex
	tasks  map[string]*task.Task
	order  []string
	groups map[string]*inlineGroup
	wg     sync.WaitGroup
}

func NewInline(handlers task.Handlers, observer outcomeObserver, cfg InlineConfig, logger logrus.FieldLogger) *Inline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Inline{
		handlers: handlers,
		observer: observer,
		cfg:      cfg,
		logger:   logger,
		tasks:    map[string]*task.Task{},
		groups:   map[string]*inlineGroup{},
	}
}

func (r *Inline) Submit(ctx context.Context, unit task.Unit) (task.UnitHandle, error) {
	id := r.register(unit, "", "")
	runCtx := context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_ = r.execute(runCtx, id)
	}()
	return task.UnitHandle{ID: id}, nil
}

func (r *Inline) SubmitGroup(ctx context.Context, units []task.Unit) (task.GroupHandle, error) {
	if len(units) == 0 {
		return task.GroupHandle{}, task.ErrEmptyGroup
	}

	groupID := uuid.NewString()
	group := &inlineGroup{done: make(chan struct{}), members: make([]string, 0, len(units))}
	for _, unit := range units {
		group.members = append(group.members, r.register(unit, groupID, ""))
	}

	r.mu.Lock()
	r.groups[groupID] = group
	r.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(group.done)
		r.runGroup(runCtx, groupID, group.members)
	}()

	return task.GroupHandle{ID: groupID, Size: len(units)}, nil
}

func (r *Inline) SubmitAfter(ctx context.Context, unit task.Unit, dependsOn task.GroupHandle) (task.UnitHandle, error) {
	r.mu.Lock()
	group, ok := r.groups[dependsOn.ID]
	r.mu.Unlock()
	if !ok {
		return task.UnitHandle{}, task.ErrUnknownGroup
	}

	id := r.register(unit, "", dependsOn.ID)
	runCtx := context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		<-group.done
		_ = r.execute(runCtx, id)
	}()
	return task.UnitHandle{ID: id}, nil
}

// SubmitGroupThen registers then before the group starts, so a status read never
// sees the group without its dependent.
func (r *Inline) SubmitGroupThen(ctx context.Context, units []task.Unit, then task.Unit) (task.GroupHandle, task.UnitHandle, error) {
	if len(units) == 0 {
		return task.GroupHandle{}, task.UnitHandle{}, task.ErrEmptyGroup
	}

	groupID := uuid.NewString()
	group := &inlineGroup{done: make(chan struct{}), members: make([]string, 0, len(units))}
	for _, unit := range units {
		group.members = append(group.members, r.register(unit, groupID, ""))
	}
	dependentID := r.register(then, "", groupID)

	r.mu.Lock()
	r.groups[groupID] = group
	r.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		defer close(group.done)
		r.runGroup(runCtx, groupID, group.members)
	}()
	go func() {
		defer r.wg.Done()
		<-group.done
		_ = r.execute(runCtx, dependentID)
	}()

	return task.GroupHandle{ID: groupID, Size: len(units)}, task.UnitHandle{ID: dependentID}, nil
}

func (r *Inline) ListByGroup(ctx context.Context, groupID string) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []task.Task
	for _, id := range r.order {
		t := r.tasks[id]
		if t.GroupID == groupID || t.DependsOn == groupID {
			out = append(out, *t)
		}
	}
	return out, nil
}

// Wait blocks until every submitted task is terminal or ctx is done.
func (r *Inline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Inline) runGroup(ctx context.Context, groupID string, members []string) {
	var (
		mu     sync.Mutex
		result *multierror.Error
		eg     errgroup.Group
	)
	eg.SetLimit(r.cfg.Concurrency)

	for _, id := range members {
		eg.Go(func() error {
			if err := r.execute(ctx, id); err != nil {
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	entry := r.logger.WithFields(logrus.Fields{"group_id": groupID, "size": len(members)})
	if err := result.ErrorOrNil(); err != nil {
		entry.WithField("failed", result.Len()).WithError(err).Warn("task group finished with failures")
		return
	}
	entry.Debug("task group finished")
}

func (r *Inline) execute(ctx context.Context, id string) error {
	snapshot := r.snapshot(id)

	handler, err := r.handlers.Lookup(snapshot.Kind)
	if err != nil {
		r.finish(id, task.StatusFailed, nil, err)
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		r.update(id, func(t *task.Task) {
			t.Status = task.StatusRunning
			t.Attempts = attempt
		})

		result, err := handler.Handle(ctx, r.snapshot(id))
		if err == nil {
			r.finish(id, task.StatusSucceeded, result, nil)
			return nil
		}

		lastErr = err
		r.logger.WithFields(logrus.Fields{
			"task_id": id,
			"kind":    snapshot.Kind,
			"attempt": attempt,
		}).WithError(err).Warn("inline task attempt failed")
		if attempt < r.cfg.MaxAttempts {
			r.update(id, func(t *task.Task) {
				t.Status = task.StatusQueued
				t.Error = err.Error()
			})
			r.observe(snapshot.Kind, task.StatusQueued)
		}
	}

	r.finish(id, task.StatusFailed, nil, lastErr)
	return lastErr
}

func (r *Inline) register(unit task.Unit, groupID, dependsOn string) string {
	t := &task.Task{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		DependsOn:   dependsOn,
		Kind:        unit.Kind,
		Payload:     unit.Payload,
		Status:      task.StatusQueued,
		MaxAttempts: r.cfg.MaxAttempts,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	r.order = append(r.order, t.ID)
	return t.ID
}

func (r *Inline) snapshot(id string) task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.tasks[id]
}

func (r *Inline) update(id string, fn func(t *task.Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.tasks[id])
}

func (r *Inline) finish(id string, status task.Status, result []byte, err error) {
	var kind task.Kind
	r.update(id, func(t *task.Task) {
		t.Status = status
		t.Result = result
		t.Error = ""
		if err != nil {
			t.Error = err.Error()
		}
		kind = t.Kind
	})
	r.observe(kind, status)
}

func (r *Inline) observe(kind task.Kind, status task.Status) {
	if r.observer != nil {
		r.observer.ObserveTask(kind, status)
	}
}
