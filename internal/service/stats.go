package service

import (
	"context"
	"fmt"

	"conectame/internal/models"
)

// ClientStore persists client records. Implementations return
// repository.ErrClientNotFound for unknown ids.
type ClientStore interface {
	Create(ctx context.Context, fields models.ClientFields) (models.Client, error)
	Get(ctx context.Context, id int64) (models.Client, error)
	Update(ctx context.Context, id int64, fields models.ClientFields) (models.Client, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, term string) ([]models.Client, error)
	Count(ctx context.Context) (int, error)
}

// StatsView computes live aggregates over the whole client set. It performs
// no access check of its own; callers go through ClientService.
type StatsView struct {
	clients ClientStore
}

func NewStatsView(clients ClientStore) *StatsView {
	return &StatsView{clients: clients}
}

// Stats is one consistent reading of the aggregates.
type Stats struct {
	StatusCounts map[string]int
	Total        int
}

// StatusCounts counts clients per canonical status by exact match. Every
// canonical status is present in the result. Clients with any other status
// are counted nowhere.
func (v *StatsView) StatusCounts(ctx context.Context) (map[string]int, error) {
	all, err := v.clients.Search(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return countStatuses(all), nil
}

// TotalCount is the number of stored clients regardless of status.
func (v *StatsView) TotalCount(ctx context.Context) (int, error) {
	n, err := v.clients.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("total count: %w", err)
	}
	return n, nil
}

// Snapshot takes the status counts and the total from a single read of the
// client set, so a write landing between two reads cannot push the bucket
// sum above the total.
func (v *StatsView) Snapshot(ctx context.Context) (Stats, error) {
	all, err := v.clients.Search(ctx, "")
	if err != nil {
		return Stats{}, fmt.Errorf("stats snapshot: %w", err)
	}
	return Stats{StatusCounts: countStatuses(all), Total: len(all)}, nil
}

func countStatuses(all []models.Client) map[string]int {
	counts := make(map[string]int, len(models.Statuses))
	for _, status := range models.Statuses {
		counts[status] = 0
	}
	for _, c := range all {
		if _, ok := counts[c.Status]; ok {
			counts[c.Status]++
		}
	}
	return counts
}
