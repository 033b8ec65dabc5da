package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/notification"
	"github.com/frahmantamala/expense-bot/pkg/logger"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification commands",
	Long:  `Push sample notification intents through the configured delivery sink`,
}

var publishNotifyCmd = &cobra.Command{
	Use:   "publish [kind]",
	Short: "Deliver a sample intent",
	Long:  `Build a sample intent of the given kind for --employee and deliver it synchronously`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestIntent(notification.Kind(args[0]))
	},
}

var notifyEmployeeID int64

func init() {
	publishNotifyCmd.Flags().Int64Var(&notifyEmployeeID, "employee", 0, "subject employee id")
	_ = publishNotifyCmd.MarkFlagRequired("employee")
	notifyCmd.AddCommand(publishNotifyCmd)
}

func publishTestIntent(kind notification.Kind) error {
	intent, err := sampleIntent(kind, notifyEmployeeID)
	if err != nil {
		return err
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()
	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer deps.Close()

	lg.Info("publishing sample intent", "kind", intent.Kind, "intent_id", intent.ID, "employee_id", intent.EmployeeID)
	if err := deps.Bus.PublishSync(ctx, intent); err != nil {
		return fmt.Errorf("delivery failed: %w", err)
	}
	lg.Info("sample intent delivered", "intent_id", intent.ID)
	return nil
}

func sampleIntent(kind notification.Kind, employeeID int64) (notification.Intent, error) {
	const (
		limitAmount = money.Amount(1000000)
		spent       = money.Amount(850000)
		candidate   = money.Amount(200000)
	)
	switch kind {
	case notification.KindLimitWarning:
		return notification.LimitWarning(employeeID, 85, spent, limitAmount), nil
	case notification.KindLimitExceeded:
		return notification.LimitExceeded(employeeID, spent+candidate, limitAmount, candidate), nil
	case notification.KindLimitApprovalRequired:
		return notification.LimitApprovalRequired(employeeID, spent+candidate, limitAmount, candidate), nil
	case notification.KindLowBalance:
		return notification.LowBalance(employeeID, -candidate), nil
	case notification.KindCompensationRequested:
		return notification.CompensationRequested(employeeID, "sample", candidate, "sample request"), nil
	case notification.KindCompensationPaid:
		return notification.CompensationPaid(employeeID, "sample", candidate, 0), nil
	case notification.KindCompensationRejected:
		return notification.CompensationRejected(employeeID, "sample", candidate, "sample rejection"), nil
	}
	return notification.Intent{}, fmt.Errorf("unknown notification kind %q", kind)
}
