package employee

import (
	"sort"

	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

const (
	KindCreateBatch task.Kind = "employee.create_batch"
	KindNotifyDone  task.Kind = "employee.notify_import_done"

	DefaultChunkSize = 500
	maxSkipSample    = 20
)

// ImportContext identifies the request an import belongs to. Every unit of an import carries it.
type ImportContext struct {
	RequestedBy  string `json:"requested_by,omitempty"`
	TotalBatches int    `json:"total_batches"`
}

type BatchPayload struct {
	Context ImportContext `json:"context"`
	Index   int           `json:"index"`
	Rows    Batch         `json:"rows"`
}

type NotifyPayload struct {
	Context ImportContext `json:"context"`
}

type ImportSummary struct {
	Created               int      `json:"created"`
	SkippedExisting       int      `json:"skipped_existing"`
	SkippedInFile         int      `json:"skipped_infile"`
	SkippedExistingSample []string `json:"skipped_existing_sample,omitempty"`
	SkippedInFileSample   []string `json:"skipped_infile_sample,omitempty"`
}

// ImportTotals merges the per-batch summaries of one import on read.
type ImportTotals struct {
	Batches          int `json:"batches"`
	SucceededBatches int `json:"succeeded_batches"`
	FailedBatches    int `json:"failed_batches"`
	PendingBatches   int `json:"pending_batches"`
	Created          int `json:"created"`
	SkippedExisting  int `json:"skipped_existing"`
	SkippedInFile    int `json:"skipped_infile"`
}

func (t *ImportTotals) Add(summary ImportSummary) {
	t.Created += summary.Created
	t.SkippedExisting += summary.SkippedExisting
	t.SkippedInFile += summary.SkippedInFile
}

// SampleEmails returns the distinct emails in sorted order, capped at 20 entries.
func SampleEmails(emails []string) []string {
	if len(emails) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(emails))
	unique := make([]string, 0, len(emails))
	for _, email := range emails {
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		unique = append(unique, email)
	}
	sort.Strings(unique)

	if len(unique) > maxSkipSample {
		unique = unique[:maxSkipSample]
	}
	return unique
}
