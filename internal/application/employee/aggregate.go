package employee

import (
	"encoding/json"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

// SummarizeImport merges the stored results of the batch tasks of one import.
// Tasks of other kinds are ignored.
func SummarizeImport(tasks []task.Task) domain.ImportTotals {
	var totals domain.ImportTotals
	for _, t := range tasks {
		if t.Kind != domain.KindCreateBatch {
			continue
		}

		totals.Batches++
		switch t.Status {
		case task.StatusSucceeded:
			totals.SucceededBatches++
			var summary domain.ImportSummary
			if len(t.Result) > 0 && json.Unmarshal(t.Result, &summary) == nil {
				totals.Add(summary)
			}
		case task.StatusFailed:
			totals.FailedBatches++
		default:
			totals.PendingBatches++
		}
	}
	return totals
}
