package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohammadpnp/employee-import/internal/domain/task"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/db/models"
)

// LeaseExhaustedReason is stored on a task whose lease expired on its final attempt.
const LeaseExhaustedReason = "lease expired on final attempt"

// failExhaustedLeasesSQL fails running tasks whose worker vanished after the last allowed attempt.
const failExhaustedLeasesSQL = `
UPDATE import_tasks
SET status = 'failed',
    error_message = ?,
    lease_expires_at = NULL,
    finished_at = NOW(),
    updated_at = NOW()
WHERE status = 'running'
  AND lease_expires_at < NOW()
  AND attempts >= max_attempts
`

// A task is claimable when it is queued, or running with an expired lease and
// attempts left, and no member of the group it depends on is still pending.
const claimNextTaskSQL = `
SELECT t.id
FROM import_tasks t
WHERE (
    t.status = 'queued'
    OR (t.status = 'running' AND t.lease_expires_at < NOW() AND t.attempts < t.max_attempts)
  )
  AND (
    t.depends_on_group IS NULL
    OR NOT EXISTS (
      SELECT 1
      FROM import_tasks d
      WHERE d.group_id = t.depends_on_group
        AND d.status NOT IN ('succeeded', 'failed')
    )
  )
ORDER BY t.created_at, t.id
LIMIT 1
FOR UPDATE OF t SKIP LOCKED
`

// ImportTaskRepository is the Postgres-backed task queue. It implements
// task.Runner for producers and the claim/lease protocol for workers.
var (
	_ task.Runner         = (*ImportTaskRepository)(nil)
	_ task.ChainSubmitter = (*ImportTaskRepository)(nil)
)

type ImportTaskRepository struct {
	db          *gorm.DB
	maxAttempts int
}

func NewImportTaskRepository(db *gorm.DB, maxAttempts int) *ImportTaskRepository {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &ImportTaskRepository{db: db, maxAttempts: maxAttempts}
}

func (r *ImportTaskRepository) Submit(ctx context.Context, unit task.Unit) (task.UnitHandle, error) {
	row := r.newRow(unit, nil, nil)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return task.UnitHandle{}, fmt.Errorf("create import task: %w", err)
	}
	return task.UnitHandle{ID: row.ID}, nil
}

func (r *ImportTaskRepository) SubmitGroup(ctx context.Context, units []task.Unit) (task.GroupHandle, error) {
	if len(units) == 0 {
		return task.GroupHandle{}, task.ErrEmptyGroup
	}

	groupID := uuid.NewString()
	rows := make([]models.ImportTask, 0, len(units))
	for _, unit := range units {
		rows = append(rows, r.newRow(unit, &groupID, nil))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, 100).Error
	})
	if err != nil {
		return task.GroupHandle{}, fmt.Errorf("create import task group: %w", err)
	}

	return task.GroupHandle{ID: groupID, Size: len(rows)}, nil
}

// SubmitGroupThen inserts the group and the unit waiting on it in one transaction.
func (r *ImportTaskRepository) SubmitGroupThen(ctx context.Context, units []task.Unit, then task.Unit) (task.GroupHandle, task.UnitHandle, error) {
	if len(units) == 0 {
		return task.GroupHandle{}, task.UnitHandle{}, task.ErrEmptyGroup
	}

	groupID := uuid.NewString()
	rows := make([]models.ImportTask, 0, len(units))
	for _, unit := range units {
		rows = append(rows, r.newRow(unit, &groupID, nil))
	}
	dependent := r.newRow(then, nil, &groupID)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return err
		}
		return tx.Create(&dependent).Error
	})
	if err != nil {
		return task.GroupHandle{}, task.UnitHandle{}, fmt.Errorf("create import task chain: %w", err)
	}

	return task.GroupHandle{ID: groupID, Size: len(rows)}, task.UnitHandle{ID: dependent.ID}, nil
}

func (r *ImportTaskRepository) SubmitAfter(ctx context.Context, unit task.Unit, dependsOn task.GroupHandle) (task.UnitHandle, error) {
	if dependsOn.ID == "" {
		return task.UnitHandle{}, task.ErrUnknownGroup
	}

	groupID := dependsOn.ID
	row := r.newRow(unit, nil, &groupID)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return task.UnitHandle{}, fmt.Errorf("create dependent import task: %w", err)
	}
	return task.UnitHandle{ID: row.ID}, nil
}

// ListByGroup returns the members of the group and the tasks waiting on it, oldest first.
func (r *ImportTaskRepository) ListByGroup(ctx context.Context, groupID string) ([]task.Task, error) {
	var rows []models.ImportTask
	err := r.db.WithContext(ctx).
		Where("group_id = ? OR depends_on_group = ?", groupID, groupID).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list import tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, toDomainTask(row))
	}
	return tasks, nil
}

func (r *ImportTaskRepository) ClaimNext(ctx context.Context, leaseDuration time.Duration) (*task.Task, error) {
	var claimed *task.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(failExhaustedLeasesSQL, LeaseExhaustedReason).Error; err != nil {
			return fmt.Errorf("fail exhausted import tasks: %w", err)
		}

		var ids []string
		if err := tx.Raw(claimNextTaskSQL).Scan(&ids).Error; err != nil {
			return fmt.Errorf("select next import task: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.ImportTask{}).
			Where("id = ?", ids[0]).
			Updates(map[string]any{
				"status":           string(task.StatusRunning),
				"attempts":         gorm.Expr("attempts + 1"),
				"started_at":       now,
				"heartbeat_at":     now,
				"lease_expires_at": now.Add(leaseDuration),
				"updated_at":       now,
			}).Error; err != nil {
			return fmt.Errorf("mark import task running: %w", err)
		}

		var row models.ImportTask
		if err := tx.First(&row, "id = ?", ids[0]).Error; err != nil {
			return fmt.Errorf("load claimed import task: %w", err)
		}

		t := toDomainTask(row)
		claimed = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}

func (r *ImportTaskRepository) Heartbeat(ctx context.Context, taskID string, leaseDuration time.Duration) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(&models.ImportTask{}).
		Where("id = ? AND status = ?", taskID, string(task.StatusRunning)).
		Updates(map[string]any{
			"heartbeat_at":     now,
			"lease_expires_at": now.Add(leaseDuration),
			"updated_at":       now,
		}).Error
	if err != nil {
		return fmt.Errorf("heartbeat import task: %w", err)
	}
	return nil
}

func (r *ImportTaskRepository) Complete(ctx context.Context, taskID string, result []byte) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":           string(task.StatusSucceeded),
		"result":           nil,
		"error_message":    nil,
		"lease_expires_at": nil,
		"finished_at":      now,
		"updated_at":       now,
	}
	if len(result) > 0 {
		updates["result"] = string(result)
	}

	if err := r.db.WithContext(ctx).Model(&models.ImportTask{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
		return fmt.Errorf("complete import task: %w", err)
	}
	return nil
}

func (r *ImportTaskRepository) Requeue(ctx context.Context, taskID string, reason string) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(&models.ImportTask{}).
		Where("id = ?", taskID).
		Updates(map[string]any{
			"status":           string(task.StatusQueued),
			"error_message":    reason,
			"lease_expires_at": nil,
			"updated_at":       now,
		}).Error
	if err != nil {
		return fmt.Errorf("requeue import task: %w", err)
	}
	return nil
}

func (r *ImportTaskRepository) Fail(ctx context.Context, taskID string, reason string) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(&models.ImportTask{}).
		Where("id = ?", taskID).
		Updates(map[string]any{
			"status":           string(task.StatusFailed),
			"error_message":    reason,
			"lease_expires_at": nil,
			"finished_at":      now,
			"updated_at":       now,
		}).Error
	if err != nil {
		return fmt.Errorf("fail import task: %w", err)
	}
	return nil
}

func (r *ImportTaskRepository) newRow(unit task.Unit, groupID, dependsOn *string) models.ImportTask {
	return models.ImportTask{
		ID:             uuid.NewString(),
		GroupID:        groupID,
		DependsOnGroup: dependsOn,
		Kind:           string(unit.Kind),
		Payload:        string(unit.Payload),
		Status:         string(task.StatusQueued),
		MaxAttempts:    r.maxAttempts,
	}
}

func toDomainTask(row models.ImportTask) task.Task {
	t := task.Task{
		ID:          row.ID,
		Kind:        task.Kind(row.Kind),
		Payload:     []byte(row.Payload),
		Status:      task.Status(row.Status),
		Attempts:    row.Attempts,
		MaxAttempts: row.MaxAttempts,
	}
	if row.GroupID != nil {
		t.GroupID = *row.GroupID
	}
	if row.DependsOnGroup != nil {
		t.DependsOn = *row.DependsOnGroup
	}
	if row.Result != nil {
		t.Result = []byte(*row.Result)
	}
	if row.ErrorMessage != nil {
		t.Error = *row.ErrorMessage
	}
	return t
}
