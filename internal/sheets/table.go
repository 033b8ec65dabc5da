package sheets

import (
	"context"
	"fmt"
	"sync"
)

// Table is one worksheet: a header row followed by data rows. Row indexes
// passed to Update are zero-based positions among the data rows.
type Table interface {
	Name() string
	Rows(ctx context.Context) ([][]string, error)
	Append(ctx context.Context, row []string) error
	Update(ctx context.Context, index int, row []string) error
}

// MemoryTable keeps rows in process. Fail, when set, is consulted before every
// call with the operation name ("rows", "append", "update").
type MemoryTable struct {
	name string

	mu   sync.Mutex
	rows [][]string
	Fail func(op string) error
}

func NewMemoryTable(name string) *MemoryTable {
	return &MemoryTable{name: name}
}

func (t *MemoryTable) Name() string { return t.name }

func (t *MemoryTable) Rows(_ context.Context) ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check("rows"); err != nil {
		return nil, err
	}
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (t *MemoryTable) Append(_ context.Context, row []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check("append"); err != nil {
		return err
	}
	t.rows = append(t.rows, append([]string(nil), row...))
	return nil
}

func (t *MemoryTable) Update(_ context.Context, index int, row []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check("update"); err != nil {
		return err
	}
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%s: row %d out of range", t.name, index)
	}
	t.rows[index] = append([]string(nil), row...)
	return nil
}

// Len returns the number of data rows.
func (t *MemoryTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func (t *MemoryTable) check(op string) error {
	if t.Fail == nil {
		return nil
	}
	return t.Fail(op)
}

// FailOn returns a Fail func that errors with err for the listed operations.
func FailOn(err error, ops ...string) func(string) error {
	return func(op string) error {
		for _, o := range ops {
			if o == op {
				return err
			}
		}
		return nil
	}
}
