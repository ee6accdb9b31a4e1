package employee

import (
	"context"
	"encoding/json"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

type ScheduleResult struct {
	ImportID     string
	Batches      int
	NotifyTaskID string
	Message      string
}

// ImportScheduler fans batches out as one task group and optionally gates a
// completion notice behind the whole group.
type ImportScheduler struct {
	runner task.Runner
	logger logrus.FieldLogger
}

func NewImportScheduler(runner task.Runner, logger logrus.FieldLogger) *ImportScheduler {
	return &ImportScheduler{runner: runner, logger: logger}
}

func (s *ImportScheduler) Schedule(ctx context.Context, batches []domain.Batch, notifyDone bool, requestedBy string) (ScheduleResult, error) {
	if len(batches) == 0 {
		return ScheduleResult{}, ErrNoValidRows
	}

	importCtx := domain.ImportContext{RequestedBy: requestedBy, TotalBatches: len(batches)}

	units := make([]task.Unit, 0, len(batches))
	for i, batch := range batches {
		payload, err := json.Marshal(domain.BatchPayload{Context: importCtx, Index: i + 1, Rows: batch})
		if err != nil {
			return ScheduleResult{}, gerrors.Wrapf(err, "encode batch %d", i+1)
		}
		units = append(units, task.Unit{Kind: domain.KindCreateBatch, Payload: payload})
	}

	var notifyUnit *task.Unit
	if notifyDone {
		payload, err := json.Marshal(domain.NotifyPayload{Context: importCtx})
		if err != nil {
			return ScheduleResult{}, gerrors.Wrap(err, "encode notify payload")
		}
		notifyUnit = &task.Unit{Kind: domain.KindNotifyDone, Payload: payload}
	}

	if chain, ok := s.runner.(task.ChainSubmitter); ok && notifyUnit != nil {
		group, notice, err := chain.SubmitGroupThen(ctx, units, *notifyUnit)
		if err != nil {
			return ScheduleResult{}, fmt.Errorf("%w: %v", ErrScheduleImport, err)
		}
		result := newScheduleResult(group, len(batches))
		result.NotifyTaskID = notice.ID
		s.logScheduled(result, requestedBy)
		return result, nil
	}

	group, err := s.runner.SubmitGroup(ctx, units)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("%w: %v", ErrScheduleImport, err)
	}
	result := newScheduleResult(group, len(batches))

	if notifyUnit != nil {
		handle, err := s.runner.SubmitAfter(ctx, *notifyUnit, group)
		if err != nil {
			// The batches are queued already, so the import is acknowledged without a notice.
			s.logger.WithFields(logrus.Fields{
				"import_id":    group.ID,
				"requested_by": requestedBy,
			}).WithError(err).Warn("completion notice not queued")
		} else {
			result.NotifyTaskID = handle.ID
		}
	}

	s.logScheduled(result, requestedBy)
	return result, nil
}

func newScheduleResult(group task.GroupHandle, batches int) ScheduleResult {
	return ScheduleResult{
		ImportID: group.ID,
		Batches:  batches,
		Message:  fmt.Sprintf("Queued %d job(s).", batches),
	}
}

func (s *ImportScheduler) logScheduled(result ScheduleResult, requestedBy string) {
	s.logger.WithFields(logrus.Fields{
		"import_id":      result.ImportID,
		"batches":        result.Batches,
		"requested_by":   requestedBy,
		"notify_task_id": result.NotifyTaskID,
	}).Info("employee import scheduled")
}
