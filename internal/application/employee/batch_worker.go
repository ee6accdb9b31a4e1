package employee

import (
	"context"
	"encoding/json"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

var tracer = otel.Tracer("github.com/mohammadpnp/employee-import/internal/application/employee")

type batchObserver interface {
	ObserveBatch(summary domain.ImportSummary)
}

type noopBatchObserver struct{}

func (noopBatchObserver) ObserveBatch(domain.ImportSummary) {}

// BatchWorker creates the employees of one batch, skipping emails that already
// exist in the store or earlier in the same batch.
type BatchWorker struct {
	store    domain.RecordStore
	observer batchObserver
	logger   logrus.FieldLogger
}

func NewBatchWorker(store domain.RecordStore, observer batchObserver, logger logrus.FieldLogger) *BatchWorker {
	if observer == nil {
		observer = noopBatchObserver{}
	}
	return &BatchWorker{store: store, observer: observer, logger: logger}
}

func (w *BatchWorker) Handle(ctx context.Context, t task.Task) ([]byte, error) {
	var payload domain.BatchPayload
	if err := json.Unmarshal(t.Payload, &payload); err != nil {
		return nil, gerrors.Wrap(err, "decode batch payload")
	}

	entry := w.logger.WithFields(logrus.Fields{
		"import_id":     t.GroupID,
		"task_id":       t.ID,
		"batch":         payload.Index,
		"total_batches": payload.Context.TotalBatches,
		"requested_by":  payload.Context.RequestedBy,
	})

	summary, err := w.ProcessBatch(ctx, payload.Rows)
	if err != nil {
		return nil, err
	}
	w.observer.ObserveBatch(summary)

	entry.WithFields(logrus.Fields{
		"created":          summary.Created,
		"skipped_existing": summary.SkippedExisting,
		"skipped_infile":   summary.SkippedInFile,
	}).Info("employee import batch done")
	if summary.SkippedExisting > 0 {
		entry.WithFields(logrus.Fields{
			"count":  summary.SkippedExisting,
			"sample": strings.Join(summary.SkippedExistingSample, ", "),
		}).Warn("skipped emails already present")
	}
	if summary.SkippedInFile > 0 {
		entry.WithFields(logrus.Fields{
			"count":  summary.SkippedInFile,
			"sample": strings.Join(summary.SkippedInFileSample, ", "),
		}).Warn("skipped emails repeated in batch")
	}

	result, err := json.Marshal(summary)
	if err != nil {
		return nil, gerrors.Wrap(err, "encode batch summary")
	}
	return result, nil
}

// ProcessBatch walks the rows in order. The working set starts empty on every call
// and only holds emails created by this call, so a repeat of an email that was
// skipped as existing is reported as existing again.
func (w *BatchWorker) ProcessBatch(ctx context.Context, rows domain.Batch) (domain.ImportSummary, error) {
	ctx, span := tracer.Start(ctx, "employee.ProcessBatch", trace.WithAttributes(attribute.Int("batch.rows", len(rows))))
	defer span.End()

	var (
		summary         domain.ImportSummary
		skippedExisting []string
		skippedInFile   []string
	)
	created := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		if !row.Valid() {
			continue
		}
		email := domain.NormalizeEmail(row.WorkEmail)

		if email != "" {
			if _, ok := created[email]; ok {
				summary.SkippedInFile++
				skippedInFile = append(skippedInFile, email)
				continue
			}

			_, found, err := w.store.FindByWorkEmail(ctx, email)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "lookup failed")
				return domain.ImportSummary{}, gerrors.Wrapf(err, "look up row %d", i+1)
			}
			if found {
				summary.SkippedExisting++
				skippedExisting = append(skippedExisting, email)
				continue
			}
		}

		if _, err := w.store.Create(ctx, domain.NewEmployeeFromCandidate(row)); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "create failed")
			return domain.ImportSummary{}, gerrors.Wrapf(err, "create row %d", i+1)
		}
		summary.Created++
		if email != "" {
			created[email] = struct{}{}
		}
	}

	summary.SkippedExistingSample = domain.SampleEmails(skippedExisting)
	summary.SkippedInFileSample = domain.SampleEmails(skippedInFile)

	span.SetAttributes(
		attribute.Int("batch.created", summary.Created),
		attribute.Int("batch.skipped_existing", summary.SkippedExisting),
		attribute.Int("batch.skipped_infile", summary.SkippedInFile),
	)
	return summary, nil
}
