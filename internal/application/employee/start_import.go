package employee

import (
	"context"
	"strings"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
)

type StartEmployeeImportInput struct {
	FileName    string
	Content     []byte
	HasHeader   bool
	ChunkSize   int
	NotifyDone  bool
	RequestedBy string
}

type StartEmployeeImportOutput struct {
	ImportID     string `json:"import_id"`
	Batches      int    `json:"batches"`
	NotifyTaskID string `json:"notify_task_id,omitempty"`
	Message      string `json:"message"`
	Status       string `json:"status"`
}

type StartEmployeeImport interface {
	Execute(ctx context.Context, in StartEmployeeImportInput) (StartEmployeeImportOutput, error)
}

type importScheduler interface {
	Schedule(ctx context.Context, batches []domain.Batch, notifyDone bool, requestedBy string) (ScheduleResult, error)
}

type startEmployeeImport struct {
	decoder          RowDecoder
	scheduler        importScheduler
	defaultChunkSize int
}

type StartImportOption func(*startEmployeeImport)

// WithDefaultChunkSize sets the chunk size used when a request does not ask for one.
func WithDefaultChunkSize(size int) StartImportOption {
	return func(uc *startEmployeeImport) {
		uc.defaultChunkSize = size
	}
}

func NewStartEmployeeImport(decoder RowDecoder, scheduler importScheduler, opts ...StartImportOption) StartEmployeeImport {
	uc := &startEmployeeImport{decoder: decoder, scheduler: scheduler, defaultChunkSize: domain.DefaultChunkSize}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute validates and batches the whole upload before anything is submitted.
func (uc *startEmployeeImport) Execute(ctx context.Context, in StartEmployeeImportInput) (StartEmployeeImportOutput, error) {
	if strings.TrimSpace(in.FileName) == "" || len(in.Content) == 0 {
		return StartEmployeeImportOutput{}, ErrNoFile
	}

	format, err := DetectFormat(in.FileName)
	if err != nil {
		return StartEmployeeImportOutput{}, err
	}

	rows, err := uc.decoder.Decode(in.Content, format, in.HasHeader)
	if err != nil {
		return StartEmployeeImportOutput{}, err
	}

	chunkSize := in.ChunkSize
	if chunkSize <= 0 {
		chunkSize = uc.defaultChunkSize
	}

	batches, err := BatchCandidates(NormalizeRows(rows), chunkSize)
	if err != nil {
		return StartEmployeeImportOutput{}, err
	}

	result, err := uc.scheduler.Schedule(ctx, batches, in.NotifyDone, strings.TrimSpace(in.RequestedBy))
	if err != nil {
		return StartEmployeeImportOutput{}, err
	}

	return StartEmployeeImportOutput{
		ImportID:     result.ImportID,
		Batches:      result.Batches,
		NotifyTaskID: result.NotifyTaskID,
		Message:      result.Message,
		Status:       "queued",
	}, nil
}
