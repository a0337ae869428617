package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/stats"
	qb "github.com/skyhigh-allstar/tryouts-api/internal/platform/querybuilder"
)

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type statsCountRow struct {
	Key   string `db:"key"`
	Total int    `db:"total"`
}

func (r *StatsRepository) Summary(ctx context.Context) (stats.Summary, error) {
	summary := stats.Summary{
		ByStatus:     make(map[string]int),
		ByAttendance: make(map[string]int),
		ByPayment:    make(map[string]int),
		ByLevel:      make(map[string]int),
		ByPosition:   make(map[string]int),
	}

	countQuery, countArgs, err := qb.Select("COUNT(1)").From("registrations").ToSQL()
	if err != nil {
		return stats.Summary{}, fmt.Errorf("build stats total query: %w", err)
	}
	if err := r.db.GetContext(ctx, &summary.Total, countQuery, countArgs...); err != nil {
		return stats.Summary{}, fmt.Errorf("count registrations for stats: %w", err)
	}

	groups := []struct {
		column string
		target map[string]int
	}{
		{"status", summary.ByStatus},
		{"attendance_status", summary.ByAttendance},
		{"payment_status", summary.ByPayment},
		{"level", summary.ByLevel},
		{"preferred_position", summary.ByPosition},
	}
	for _, group := range groups {
		if err := r.countBy(ctx, group.column, group.target); err != nil {
			return stats.Summary{}, err
		}
	}
	return summary, nil
}

func (r *StatsRepository) countBy(ctx context.Context, column string, target map[string]int) error {
	query, args, err := qb.Select(column+" AS key", "COUNT(1) AS total").
		From("registrations").
		Where(qb.Expr(column + " IS NOT NULL")).
		GroupBy(column).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build stats group query for %s: %w", column, err)
	}

	var rows []statsCountRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("group registrations by %s: %w", column, err)
	}
	for _, row := range rows {
		if row.Key == "" {
			continue
		}
		target[row.Key] = row.Total
	}
	return nil
}
