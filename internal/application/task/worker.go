// Package task drives queued tasks through their handlers.
package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/employee-import/internal/domain/task"
)

type workerRepo interface {
	ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.Task, error)
	Heartbeat(ctx context.Context, taskID string, leaseDuration time.Duration) error
	Complete(ctx context.Context, taskID string, result []byte) error
	Requeue(ctx context.Context, taskID string, reason string) error
	Fail(ctx context.Context, taskID string, reason string) error
}

type outcomeObserver interface {
	ObserveTask(kind domain.Kind, status domain.Status)
}

type noopOutcomeObserver struct{}

func (noopOutcomeObserver) ObserveTask(domain.Kind, domain.Status) {}

type WorkerConfig struct {
	Workers           int
	PollInterval      time.Duration
	LeaseDuration     time.Duration
	HeartbeatInterval time.Duration
}

// Worker polls the task queue with a fixed number of goroutines.
type Worker struct {
	repo     workerRepo
	handlers domain.Handlers
	observer outcomeObserver
	cfg      WorkerConfig
	logger   logrus.FieldLogger

	once sync.Once
	wg   sync.WaitGroup
}

func NewWorker(repo workerRepo, handlers domain.Handlers, observer outcomeObserver, cfg WorkerConfig, logger logrus.FieldLogger) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 10
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 60 * time.Second
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = cfg.LeaseDuration / 2
	}
	if observer == nil {
		observer = noopOutcomeObserver{}
	}

	return &Worker{
		repo:     repo,
		handlers: handlers,
		observer: observer,
		cfg:      cfg,
		logger:   logger,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.once.Do(func() {
		w.logger.WithField("workers", w.cfg.Workers).Info("task workers started")
		w.wg.Add(w.cfg.Workers)
		for i := 0; i < w.cfg.Workers; i++ {
			go func() {
				defer w.wg.Done()
				w.workerLoop(ctx)
			}()
		}
	})
}

// Wait blocks until every worker goroutine has returned. Tasks in flight when
// the Start context is cancelled still get their outcome recorded.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		t, err := w.repo.ClaimNext(ctx, w.cfg.LeaseDuration)
		if err != nil {
			if ctx.Err() == nil {
				w.logger.WithError(err).Error("claim next task failed")
			}
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if t == nil {
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if err := w.ProcessTask(ctx, *t); err != nil {
			w.logger.WithFields(logrus.Fields{
				"task_id":  t.ID,
				"kind":     t.Kind,
				"attempts": t.Attempts,
			}).WithError(err).Warn("process task failed")
		}
	}
}

// ProcessTask runs one claimed task and records its outcome. The lease is
// extended in the background while the handler runs. The outcome is written
// even when ctx is cancelled mid-run.
func (w *Worker) ProcessTask(ctx context.Context, t domain.Task) error {
	settleCtx := context.WithoutCancel(ctx)

	handler, err := w.handlers.Lookup(t.Kind)
	if err != nil {
		err = fmt.Errorf("%w: %s", err, t.Kind)
		if failErr := w.repo.Fail(settleCtx, t.ID, truncateReason(err.Error())); failErr != nil {
			return fmt.Errorf("%v; fail update failed: %w", err, failErr)
		}
		w.observer.ObserveTask(t.Kind, domain.StatusFailed)
		return err
	}

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)
		w.heartbeat(heartbeatCtx, t.ID)
	}()

	result, err := handler.Handle(ctx, t)
	stopHeartbeat()
	<-heartbeatDone

	if err != nil {
		return w.onProcessingError(settleCtx, t, err)
	}

	if err := w.repo.Complete(settleCtx, t.ID, result); err != nil {
		return w.onProcessingError(settleCtx, t, fmt.Errorf("complete task: %w", err))
	}
	w.observer.ObserveTask(t.Kind, domain.StatusSucceeded)
	return nil
}

func (w *Worker) heartbeat(ctx context.Context, taskID string) {
	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.repo.Heartbeat(ctx, taskID, w.cfg.LeaseDuration); err != nil && ctx.Err() == nil {
				w.logger.WithField("task_id", taskID).WithError(err).Warn("task heartbeat failed")
			}
		}
	}
}

func (w *Worker) onProcessingError(ctx context.Context, t domain.Task, err error) error {
	reason := truncateReason(err.Error())
	if t.Attempts < t.MaxAttempts {
		if requeueErr := w.repo.Requeue(ctx, t.ID, reason); requeueErr != nil {
			return fmt.Errorf("%v; requeue failed: %w", err, requeueErr)
		}
		w.observer.ObserveTask(t.Kind, domain.StatusQueued)
		return err
	}

	if failErr := w.repo.Fail(ctx, t.ID, reason); failErr != nil {
		return fmt.Errorf("%v; fail update failed: %w", err, failErr)
	}
	w.observer.ObserveTask(t.Kind, domain.StatusFailed)
	return err
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	return reason[:maxLen]
}
