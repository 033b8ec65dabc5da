package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-bot/internal/report"
	"github.com/frahmantamala/expense-bot/pkg/logger"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reporting commands",
}

var reportBalancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Write the balance statement as PDF",
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

		summary, err := deps.Reports.Balances(ctx)
		if err != nil {
			return err
		}

		f, err := os.Create(reportOut)
		if err != nil {
			return err
		}
		if err := report.WriteBalancesPDF(f, summary); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to render balance statement: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Println("Balance statement written to", reportOut)
		return nil
	},
}

func init() {
	reportBalancesCmd.Flags().StringVarP(&reportOut, "out", "o", "balances.pdf", "output file")
	reportCmd.AddCommand(reportBalancesCmd)
}
