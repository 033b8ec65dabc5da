package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/balance"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/limit"
	"github.com/frahmantamala/expense-bot/internal/notification"
)

// Policy decides what happens to a submission that exceeds the limit.
type Policy string

const (
	// PolicyFlag records the expense and notifies.
	PolicyFlag Policy = "flag"
	// PolicyBlock holds the expense back for approval unless the submitter is an approver.
	PolicyBlock Policy = "block"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyFlag, PolicyBlock:
		return p, nil
	case "":
		return PolicyFlag, nil
	}
	return "", fmt.Errorf("unknown limit policy %q", s)
}

type Outcome string

const (
	OutcomeRecorded         Outcome = "recorded"
	OutcomeApprovalRequired Outcome = "approval_required"
)

type EmployeeReader interface {
	Get(ctx context.Context, id int64) (*employee.Employee, error)
}

type Processor interface {
	ProcessExpense(ctx context.Context, in balance.ExpenseInput) (*balance.Outcome, error)
}

type Evaluator interface {
	EvaluateFor(ctx context.Context, emp *employee.Employee, amount money.Amount) limit.Result
}

type Result struct {
	Outcome    Outcome             `json:"outcome"`
	Limit      limit.Result        `json:"limit"`
	Processing *balance.Outcome    `json:"processing,omitempty"`
	Intents    []notification.Kind `json:"intents,omitempty"`
}

// Service is the expense submission flow: access check, limit policy,
// balance processing, then notification triggers.
type Service struct {
	employees EmployeeReader
	processor Processor
	evaluator Evaluator
	notifier  notification.Notifier
	policy    Policy
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(
	employees EmployeeReader,
	processor Processor,
	evaluator Evaluator,
	notifier notification.Notifier,
	policy Policy,
	logger *slog.Logger,
) *Service {
	if policy == "" {
		policy = PolicyFlag
	}
	return &Service{
		employees: employees,
		processor: processor,
		evaluator: evaluator,
		notifier:  notifier,
		policy:    policy,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) Submit(ctx context.Context, employeeID int64, dto SubmitExpenseDTO) (*Result, error) {
	if err := dto.Validate(s.now()); err != nil {
		s.logger.Warn("expense submission validation failed", "error", err, "employee_id", employeeID)
		return nil, err
	}

	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to load submitter", "error", err, "employee_id", employeeID)
		return nil, internal.NewStoreError(err)
	}
	if !emp.IsActive() {
		s.logger.Warn("blocked employee tried to submit an expense", "employee_id", employeeID)
		return nil, internal.ErrEmployeeBlocked
	}

	if s.policy == PolicyBlock && !emp.Role.IsApprover() {
		res := s.evaluator.EvaluateFor(ctx, emp, dto.Amount)
		if res.Exceeded {
			s.logger.Info("expense held for limit approval",
				"employee_id", employeeID,
				"amount", dto.Amount,
				"period_total", res.PeriodTotal,
				"limit", res.Limit)
			intent := notification.LimitApprovalRequired(emp.ID, res.PeriodTotal, res.Limit, res.Candidate)
			s.notifier.Notify(ctx, intent)
			return &Result{
				Outcome: OutcomeApprovalRequired,
				Limit:   res,
				Intents: []notification.Kind{intent.Kind},
			}, nil
		}
	}

	in := balance.ExpenseInput{
		EmployeeID:  emp.ID,
		Amount:      dto.Amount,
		Category:    dto.Category,
		Description: dto.Description,
		ReceiptRef:  dto.ReceiptRef,
		ProjectID:   dto.ProjectID,
		Comment:     dto.Comment,
	}
	if dto.SpentAt != nil {
		in.SpentAt = *dto.SpentAt
	}

	out, err := s.processor.ProcessExpense(ctx, in)
	if err != nil {
		res := &Result{Processing: out}
		if out != nil {
			res.Limit = out.Limit
		}
		return res, err
	}

	result := &Result{Outcome: OutcomeRecorded, Limit: out.Limit, Processing: out}
	for _, intent := range notification.Triggers(emp.ID, out.Limit, out.NewBalance) {
		s.notifier.Notify(ctx, intent)
		result.Intents = append(result.Intents, intent.Kind)
	}
	return result, nil
}
