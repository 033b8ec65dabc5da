package notification

import (
	"fmt"
	"strconv"

	"github.com/frahmantamala/expense-bot/internal/employee"
)

// Message is one rendered notification for one recipient.
type Message struct {
	IntentID    string `json:"intent_id"`
	Kind        Kind   `json:"kind"`
	RecipientID int64  `json:"recipient_id"`
	Text        string `json:"text"`
	Intent      Intent `json:"intent"`
}

func Render(intent Intent, subject *employee.Employee, recipient *employee.Employee) string {
	self := subject != nil && recipient != nil && subject.ID == recipient.ID
	who := "Employee " + strconv.FormatInt(intent.EmployeeID, 10)
	if subject != nil {
		who = subject.FullName()
	}

	switch intent.Kind {
	case KindLimitWarning:
		if self {
			return fmt.Sprintf("Warning: you have used %.1f%% of your limit (%s of %s).",
				intent.UsagePercent, intent.PeriodTotal, intent.Limit)
		}
		return fmt.Sprintf("%s has used %.1f%% of their limit (%s of %s).",
			who, intent.UsagePercent, intent.PeriodTotal, intent.Limit)

	case KindLimitExceeded:
		if self {
			return fmt.Sprintf("Limit exceeded: spent %s of %s this period, new expense %s.",
				intent.PeriodTotal, intent.Limit, intent.Candidate)
		}
		return fmt.Sprintf("%s exceeded their limit: spent %s of %s, new expense %s.",
			who, intent.PeriodTotal, intent.Limit, intent.Candidate)

	case KindLimitApprovalRequired:
		return fmt.Sprintf("%s submitted %s over their limit (%s of %s spent). The expense was not recorded and needs approval.",
			who, intent.Candidate, intent.PeriodTotal, intent.Limit)

	case KindLowBalance:
		balance := "0.00"
		if intent.NewBalance != nil {
			balance = intent.NewBalance.String()
		}
		if self {
			return fmt.Sprintf("Your balance is %s.", balance)
		}
		return fmt.Sprintf("%s has a balance of %s.", who, balance)

	case KindCompensationRequested:
		text := fmt.Sprintf("%s requests compensation of %s (request %s).", who, intent.Amount, intent.RequestID)
		if intent.Reason != "" {
			text += " Comment: " + intent.Reason
		}
		return text

	case KindCompensationPaid:
		balance := ""
		if intent.NewBalance != nil {
			balance = fmt.Sprintf(" New balance: %s.", intent.NewBalance)
		}
		return fmt.Sprintf("Compensation of %s has been paid.%s", intent.Amount, balance)

	case KindCompensationRejected:
		return fmt.Sprintf("Compensation request for %s was rejected. Reason: %s", intent.Amount, intent.Reason)
	}

	return fmt.Sprintf("%s: %s", intent.Kind, who)
}
