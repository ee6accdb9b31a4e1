package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	app "github.com/mohammadpnp/employee-import/internal/application/employee"
	"github.com/mohammadpnp/employee-import/internal/bootstrap"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/file"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/repository"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/runner"
)

type queueOptions struct {
	File      string
	NoHeader  bool
	ChunkSize int
	Notify    bool
	UserID    string
	Inline    bool
}

func (o queueOptions) validate() error {
	if strings.TrimSpace(o.File) == "" {
		return errors.New("--file is required")
	}
	if o.UserID != "" {
		if _, err := uuid.Parse(o.UserID); err != nil {
			return fmt.Errorf("--user-id must be a UUID: %w", err)
		}
	}
	return nil
}

// inlineTasks is the part of the inline runner the queue command waits on.
type inlineTasks interface {
	Wait(ctx context.Context) error
	ListByGroup(ctx context.Context, groupID string) ([]task.Task, error)
}

func newQueueCmd(root *rootOptions) *cobra.Command {
	var opts queueOptions

	cmd := &cobra.Command{
		Use:   "queue --file <path>",
		Short: "Decode a CSV or XLSX file and queue its employee batches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			env, err := openEnvironment(ctx, root)
			if err != nil {
				return err
			}
			defer env.db.Close()

			var (
				tasks  task.Runner
				inline inlineTasks
			)
			handlers := task.Handlers{}
			if opts.Inline {
				r := runner.NewInline(handlers, env.metrics, runner.InlineConfig{
					Concurrency: env.cfg.Import.Workers,
					MaxAttempts: env.cfg.Import.MaxAttempts,
				}, env.logger)
				tasks, inline = r, r
				bootstrap.RegisterImportHandlers(handlers, r, bootstrap.NewImportComponents(env.cfg, env.db, env.metrics, env.logger), env.logger)
			} else {
				tasks = repository.NewImportTaskRepository(env.db.Gorm, env.cfg.Import.MaxAttempts)
			}

			source := file.NewLocalSource(env.cfg.Import.BaseDir, env.cfg.Import.MaxUploadSize)
			return runQueue(ctx, cmd.OutOrStdout(), opts, source, bootstrap.NewStartImport(env.cfg, tasks, env.logger), inline)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "path of the CSV or XLSX file, relative to IMPORT_BASE_DIR")
	cmd.Flags().BoolVar(&opts.NoHeader, "no-header", false, "treat the first row as data")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", 0, "rows per batch (defaults to IMPORT_CHUNK_SIZE)")
	cmd.Flags().BoolVar(&opts.Notify, "notify", true, "mail the requester once every batch finished")
	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "UUID of the requesting user")
	cmd.Flags().BoolVar(&opts.Inline, "inline", false, "run the batches in this process and wait for them")

	return cmd
}

// runQueue starts the import. With inline set it also waits for every task and prints totals.
func runQueue(ctx context.Context, out io.Writer, opts queueOptions, source *file.LocalSource, startImport app.StartEmployeeImport, inline inlineTasks) error {
	upload, err := source.Read(ctx, opts.File)
	if err != nil {
		return err
	}

	result, err := startImport.Execute(ctx, app.StartEmployeeImportInput{
		FileName:    upload.Name,
		Content:     upload.Content,
		HasHeader:   !opts.NoHeader,
		ChunkSize:   opts.ChunkSize,
		NotifyDone:  opts.Notify,
		RequestedBy: opts.UserID,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\nimport_id: %s\n", result.Message, result.ImportID)
	if inline == nil {
		return nil
	}

	if err := inline.Wait(ctx); err != nil {
		return fmt.Errorf("wait for import: %w", err)
	}
	tasks, err := inline.ListByGroup(ctx, result.ImportID)
	if err != nil {
		return err
	}
	printTotals(out, app.SummarizeImport(tasks))
	return nil
}
