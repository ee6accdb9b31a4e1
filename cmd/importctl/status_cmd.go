package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	app "github.com/mohammadpnp/employee-import/internal/application/employee"
	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/repository"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <import-id>",
		Short: "Show the progress and totals of a queued import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnvironment(ctx, root)
			if err != nil {
				return err
			}
			defer env.db.Close()

			tasks := repository.NewImportTaskRepository(env.db.Gorm, env.cfg.Import.MaxAttempts)
			out, err := app.NewGetImportStatus(tasks).Execute(ctx, app.GetImportStatusInput{ImportID: args[0]})
			if err != nil {
				return err
			}

			printStatus(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func printStatus(w io.Writer, out app.GetImportStatusOutput) {
	fmt.Fprintf(w, "import_id: %s\nstatus: %s\n", out.ImportID, out.Status)
	printTotals(w, out.Totals)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tKIND\tSTATUS\tATTEMPTS\tERROR")
	for _, t := range out.Tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Kind, t.Status, t.Attempts, t.Error)
	}
	_ = tw.Flush()
}

func printTotals(w io.Writer, totals domain.ImportTotals) {
	fmt.Fprintf(w, "batches: %d (succeeded %d, failed %d, pending %d)\n",
		totals.Batches, totals.SucceededBatches, totals.FailedBatches, totals.PendingBatches)
	fmt.Fprintf(w, "created: %d\nskipped_existing: %d\nskipped_infile: %d\n",
		totals.Created, totals.SkippedExisting, totals.SkippedInFile)
}
