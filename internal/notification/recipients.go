package notification

import (
	"context"
	"errors"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/employee"
)

type Directory interface {
	Get(ctx context.Context, id int64) (*employee.Employee, error)
	WithRoles(ctx context.Context, roles ...employee.Role) ([]*employee.Employee, error)
	Subscribers(ctx context.Context, kind employee.Subscription) ([]*employee.Employee, error)
}

type route struct {
	subject     bool
	roles       []employee.Role
	subscribers []employee.Subscription
}

var routes = map[Kind]route{
	KindLimitWarning: {
		subject: true,
		roles:   []employee.Role{employee.RoleController, employee.RoleOwner},
	},
	KindLimitExceeded: {
		subject: true,
		roles:   []employee.Role{employee.RoleChiefAccountant, employee.RoleOwner},
	},
	KindLimitApprovalRequired: {
		roles: []employee.Role{employee.RoleChiefAccountant, employee.RoleOwner},
	},
	KindLowBalance: {
		subject:     true,
		roles:       []employee.Role{employee.RoleChiefAccountant, employee.RoleOwner},
		subscribers: []employee.Subscription{employee.SubscriptionBalanceAlert},
	},
	KindCompensationRequested: {
		roles: []employee.Role{employee.RoleChiefAccountant, employee.RoleOwner},
	},
	KindCompensationPaid:     {subject: true},
	KindCompensationRejected: {subject: true},
}

// Recipients resolves who hears about an intent. Blocked employees are skipped
// and every recipient appears once.
func Recipients(ctx context.Context, dir Directory, intent Intent) (subject *employee.Employee, recipients []*employee.Employee, err error) {
	r, ok := routes[intent.Kind]
	if !ok {
		return nil, nil, nil
	}

	subject, err = dir.Get(ctx, intent.EmployeeID)
	if err != nil && !errors.Is(err, internal.ErrEmployeeNotFound) {
		return nil, nil, err
	}

	seen := make(map[int64]bool)
	add := func(e *employee.Employee) {
		if e == nil || !e.IsActive() || seen[e.ID] {
			return
		}
		seen[e.ID] = true
		recipients = append(recipients, e)
	}

	if r.subject {
		add(subject)
	}
	if len(r.roles) > 0 {
		staff, err := dir.WithRoles(ctx, r.roles...)
		if err != nil {
			return subject, nil, err
		}
		for _, e := range staff {
			add(e)
		}
	}
	for _, kind := range r.subscribers {
		subs, err := dir.Subscribers(ctx, kind)
		if err != nil {
			return subject, nil, err
		}
		for _, e := range subs {
			add(e)
		}
	}
	return subject, recipients, nil
}
