package memory

import (
	"context"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/stats"
)

// StatsRepository derives the aggregate summary from a registration store on
// every call, matching the behavior of the database view.
type StatsRepository struct {
	source *RegistrationRepository
}

func NewStatsRepository(source *RegistrationRepository) *StatsRepository {
	return &StatsRepository{source: source}
}

func (r *StatsRepository) Summary(ctx context.Context) (stats.Summary, error) {
	items, _, err := r.source.List(ctx, registration.ListFilter{})
	if err != nil {
		return stats.Summary{}, err
	}

	summary := stats.Summary{
		Total:        len(items),
		ByStatus:     make(map[string]int),
		ByAttendance: make(map[string]int),
		ByPayment:    make(map[string]int),
		ByLevel:      make(map[string]int),
		ByPosition:   make(map[string]int),
	}
	for _, item := range items {
		summary.ByStatus[string(item.Status)]++
		summary.ByAttendance[string(item.AttendanceStatus)]++
		summary.ByPayment[string(item.PaymentStatus)]++
		summary.ByLevel[string(item.Level)]++
		if item.PreferredPosition != "" {
			summary.ByPosition[item.PreferredPosition]++
		}
	}
	return summary, nil
}
