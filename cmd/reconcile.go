package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-bot/pkg/logger"
)

var reconcileEmployeeID int64

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute balances from the ledger and report drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		ctx := context.Background()
		deps, err := initializeDependencies(ctx, cfg, logger.LoggerWrapper())
		if err != nil {
			return err
		}
		defer deps.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EMPLOYEE\tSTORED\tCOMPUTED\tDRIFT\tUNLINKED")

		if reconcileEmployeeID != 0 {
			rec, err := deps.Engine.Reconcile(ctx, reconcileEmployeeID)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", rec.EmployeeID, rec.Stored, rec.Computed, rec.Drift, len(rec.UnlinkedPending))
			return w.Flush()
		}

		recs, err := deps.Engine.ReconcileAll(ctx)
		drifted := 0
		for _, rec := range recs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", rec.EmployeeID, rec.Stored, rec.Computed, rec.Drift, len(rec.UnlinkedPending))
			if !rec.Consistent() {
				drifted++
			}
		}
		if ferr := w.Flush(); ferr != nil {
			return ferr
		}
		if err != nil {
			return err
		}
		if drifted > 0 {
			return fmt.Errorf("%d of %d balances drifted", drifted, len(recs))
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().Int64Var(&reconcileEmployeeID, "employee", 0, "reconcile one employee only")
}
