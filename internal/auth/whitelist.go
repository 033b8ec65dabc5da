package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/expense-bot/internal/employee"
)

type EmployeeLister interface {
	List(ctx context.Context) ([]*employee.Employee, error)
}

// Whitelist caches the registered employees and reloads them after ttl or
// an explicit Invalidate.
type Whitelist struct {
	employees EmployeeLister
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.RWMutex
	cache    map[int64]*employee.Employee
	loadedAt time.Time
}

func NewWhitelist(employees EmployeeLister, ttl time.Duration, logger *slog.Logger) *Whitelist {
	return &Whitelist{
		employees: employees,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}
}

func (w *Whitelist) fresh() bool {
	return w.cache != nil && w.now().Sub(w.loadedAt) < w.ttl
}

// Lookup returns the cached employee or ok=false when the id is unknown.
func (w *Whitelist) Lookup(ctx context.Context, id int64) (*employee.Employee, bool, error) {
	w.mu.RLock()
	if w.fresh() {
		e, ok := w.cache[id]
		w.mu.RUnlock()
		return e, ok, nil
	}
	w.mu.RUnlock()

	if err := w.reload(ctx); err != nil {
		return nil, false, err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.cache[id]
	return e, ok, nil
}

func (w *Whitelist) reload(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fresh() {
		return nil
	}

	list, err := w.employees.List(ctx)
	if err != nil {
		w.logger.Error("failed to reload whitelist", "error", err)
		return err
	}
	cache := make(map[int64]*employee.Employee, len(list))
	for _, e := range list {
		cache[e.ID] = e
	}
	w.cache = cache
	w.loadedAt = w.now()
	w.logger.Debug("whitelist reloaded", "employees", len(cache))
	return nil
}

// Invalidate drops the cache so the next lookup reloads it. The id is only logged.
func (w *Whitelist) Invalidate(id int64) {
	w.mu.Lock()
	w.cache = nil
	w.mu.Unlock()
	w.logger.Debug("whitelist invalidated", "employee_id", id)
}

func (w *Whitelist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.cache)
}
