package employee_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/mohammadpnp/employee-import/internal/application/employee"
	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

func threeBatches() []domain.Batch {
	return []domain.Batch{
		{{Name: "A"}, {Name: "B"}},
		{{Name: "C"}, {Name: "D"}},
		{{Name: "E"}},
	}
}

func TestScheduleFansOutAndGatesNotice(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	runner := &fakeRunner{}
	scheduler := app.NewImportScheduler(runner, logger)

	result, err := scheduler.Schedule(context.Background(), threeBatches(), true, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "group-1", result.ImportID)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, "notify-1", result.NotifyTaskID)
	assert.Equal(t, "Queued 3 job(s).", result.Message)

	require.Len(t, runner.groups, 1)
	require.Len(t, runner.groups[0], 3)
	for i, unit := range runner.groups[0] {
		assert.Equal(t, domain.KindCreateBatch, unit.Kind)

		var payload domain.BatchPayload
		require.NoError(t, json.Unmarshal(unit.Payload, &payload))
		assert.Equal(t, i+1, payload.Index)
		assert.Equal(t, "user-1", payload.Context.RequestedBy)
		assert.Equal(t, 3, payload.Context.TotalBatches)
	}

	require.Len(t, runner.after, 1)
	assert.Equal(t, domain.KindNotifyDone, runner.after[0].Kind)
	assert.Equal(t, "group-1", runner.afterGroups[0].ID)
	assert.Equal(t, 3, runner.afterGroups[0].Size)

	var notify domain.NotifyPayload
	require.NoError(t, json.Unmarshal(runner.after[0].Payload, &notify))
	assert.Equal(t, domain.ImportContext{RequestedBy: "user-1", TotalBatches: 3}, notify.Context)
}

func TestScheduleWithoutNotice(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	runner := &fakeRunner{}

	result, err := app.NewImportScheduler(runner, logger).Schedule(context.Background(), threeBatches(), false, "")
	require.NoError(t, err)

	assert.Empty(t, result.NotifyTaskID)
	assert.Empty(t, runner.after)
}

func TestScheduleRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	runner := &fakeRunner{}

	_, err := app.NewImportScheduler(runner, logger).Schedule(context.Background(), nil, true, "")
	require.ErrorIs(t, err, app.ErrNoValidRows)
	require.ErrorIs(t, err, app.ErrUserInput)
	assert.Empty(t, runner.groups)
	assert.Empty(t, runner.after)
}

func TestScheduleRunnerFailure(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()

	_, err := app.NewImportScheduler(&fakeRunner{groupErr: errors.New("db down")}, logger).
		Schedule(context.Background(), threeBatches(), true, "")
	require.ErrorIs(t, err, app.ErrScheduleImport)
	assert.NotErrorIs(t, err, app.ErrUserInput)
}

func TestScheduleAcknowledgesQueuedBatchesWhenNoticeFails(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	runner := &fakeRunner{afterErr: errors.New("db blip")}

	result, err := app.NewImportScheduler(runner, logger).Schedule(context.Background(), threeBatches(), true, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "group-1", result.ImportID)
	assert.Equal(t, 3, result.Batches)
	assert.Empty(t, result.NotifyTaskID)
	assert.Equal(t, "Queued 3 job(s).", result.Message)
	require.Len(t, runner.groups, 1)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["import_id"] == "group-1" {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning for the missing notice")
}

type fakeChainRunner struct {
	fakeRunner
	chainErr   error
	chained    [][]task.Unit
	chainAfter []task.Unit
}

func (f *fakeChainRunner) SubmitGroupThen(ctx context.Context, units []task.Unit, then task.Unit) (task.GroupHandle, task.UnitHandle, error) {
	if f.chainErr != nil {
		return task.GroupHandle{}, task.UnitHandle{}, f.chainErr
	}
	f.chained = append(f.chained, units)
	f.chainAfter = append(f.chainAfter, then)
	return task.GroupHandle{ID: "chain-1", Size: len(units)}, task.UnitHandle{ID: "chain-notice-1"}, nil
}

func TestScheduleUsesAtomicChainWhenAvailable(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	runner := &fakeChainRunner{}

	result, err := app.NewImportScheduler(runner, logger).Schedule(context.Background(), threeBatches(), true, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "chain-1", result.ImportID)
	assert.Equal(t, "chain-notice-1", result.NotifyTaskID)
	require.Len(t, runner.chained, 1)
	assert.Len(t, runner.chained[0], 3)
	assert.Equal(t, domain.KindNotifyDone, runner.chainAfter[0].Kind)
	assert.Empty(t, runner.groups)
	assert.Empty(t, runner.after)
}

func TestScheduleChainFailureQueuesNothing(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	runner := &fakeChainRunner{chainErr: errors.New("db down")}

	result, err := app.NewImportScheduler(runner, logger).Schedule(context.Background(), threeBatches(), true, "")
	require.ErrorIs(t, err, app.ErrScheduleImport)
	assert.Empty(t, result.ImportID)
	assert.Empty(t, runner.chained)
	assert.Empty(t, runner.groups)
}

func TestScheduleWithoutNoticeSkipsChain(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	runner := &fakeChainRunner{}

	result, err := app.NewImportScheduler(runner, logger).Schedule(context.Background(), threeBatches(), false, "")
	require.NoError(t, err)
	assert.Empty(t, result.NotifyTaskID)
	assert.Empty(t, runner.chained)
	require.Len(t, runner.groups, 1)
}
