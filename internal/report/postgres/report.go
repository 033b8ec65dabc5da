package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/expense-bot/internal/report"
)

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

var _ report.ReadModel = (*ReportRepository)(nil)

const projectTotalsQuery = `
SELECT e.project_id AS project_id,
       COALESCE(p.name, '') AS name,
       COUNT(*) AS count,
       COALESCE(SUM(e.amount), 0) AS total
FROM expenses e
LEFT JOIN projects p ON p.id = e.project_id
WHERE e.operation = 'expense'
  AND e.project_id IS NOT NULL AND e.project_id <> ''
  AND e.spent_at >= ? AND e.spent_at < ?
GROUP BY e.project_id, p.name
ORDER BY total DESC, e.project_id ASC`

func (r *ReportRepository) ProjectTotals(ctx context.Context, rng report.Range) ([]report.ProjectTotal, error) {
	from := rng.From
	if from.IsZero() {
		from = time.Unix(0, 0)
	}
	var totals []report.ProjectTotal
	if err := r.db.SelectContext(ctx, &totals, r.db.Rebind(projectTotalsQuery), from.UTC(), rng.To.UTC()); err != nil {
		return nil, err
	}
	return totals, nil
}
