package employee

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

const (
	ImportStatusInProgress = "in_progress"
	ImportStatusCompleted  = "completed"
)

type GetImportStatusInput struct {
	ImportID string
}

type ImportTaskOutput struct {
	ID       string                `json:"id"`
	Kind     string                `json:"kind"`
	Status   string                `json:"status"`
	Attempts int                   `json:"attempts"`
	Error    string                `json:"error,omitempty"`
	Summary  *domain.ImportSummary `json:"summary,omitempty"`
}

type GetImportStatusOutput struct {
	ImportID string              `json:"import_id"`
	Status   string              `json:"status"`
	Totals   domain.ImportTotals `json:"totals"`
	Tasks    []ImportTaskOutput  `json:"tasks"`
}

type GetImportStatus interface {
	Execute(ctx context.Context, in GetImportStatusInput) (GetImportStatusOutput, error)
}

type getImportStatus struct {
	tasks groupLister
}

func NewGetImportStatus(tasks groupLister) GetImportStatus {
	return &getImportStatus{tasks: tasks}
}

func (uc *getImportStatus) Execute(ctx context.Context, in GetImportStatusInput) (GetImportStatusOutput, error) {
	parsed, err := uuid.Parse(in.ImportID)
	if err != nil {
		return GetImportStatusOutput{}, ErrInvalidImportID
	}
	importID := parsed.String()

	tasks, err := uc.tasks.ListByGroup(ctx, importID)
	if err != nil {
		return GetImportStatusOutput{}, fmt.Errorf("%w: %v", ErrGetImportStatus, err)
	}
	if len(tasks) == 0 {
		return GetImportStatusOutput{}, ErrImportNotFound
	}

	status := ImportStatusCompleted
	outputs := make([]ImportTaskOutput, 0, len(tasks))
	for _, t := range tasks {
		if !t.Status.Terminal() {
			status = ImportStatusInProgress
		}

		out := ImportTaskOutput{
			ID:       t.ID,
			Kind:     string(t.Kind),
			Status:   string(t.Status),
			Attempts: t.Attempts,
			Error:    t.Error,
		}
		if t.Kind == domain.KindCreateBatch && t.Status == task.StatusSucceeded && len(t.Result) > 0 {
			var summary domain.ImportSummary
			if json.Unmarshal(t.Result, &summary) == nil {
				out.Summary = &summary
			}
		}
		outputs = append(outputs, out)
	}

	return GetImportStatusOutput{
		ImportID: importID,
		Status:   status,
		Totals:   SummarizeImport(tasks),
		Tasks:    outputs,
	}, nil
}
