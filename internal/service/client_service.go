package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"conectame/internal/models"
	"conectame/internal/repository"
)

// Authenticator is the access check every ClientService operation runs
// before touching a store.
type Authenticator interface {
	RequireAuthenticated(ctx context.Context) (int64, error)
}

// ClientList is the search result together with the live aggregates.
type ClientList struct {
	Query        string
	Clients      []models.Client
	StatusCounts map[string]int
	Total        int
}

type ClientService struct {
	auth    Authenticator
	clients ClientStore
	stats   *StatsView
	log     zerolog.Logger
}

func NewClientService(auth Authenticator, clients ClientStore, log zerolog.Logger) *ClientService {
	return &ClientService{
		auth:    auth,
		clients: clients,
		stats:   NewStatsView(clients),
		log:     log,
	}
}

func (s *ClientService) List(ctx context.Context, query string) (ClientList, error) {
	if _, err := s.auth.RequireAuthenticated(ctx); err != nil {
		return ClientList{}, err
	}

	clients, err := s.clients.Search(ctx, query)
	if err != nil {
		return ClientList{}, err
	}
	stats, err := s.stats.Snapshot(ctx)
	if err != nil {
		return ClientList{}, err
	}

	return ClientList{
		Query:        query,
		Clients:      clients,
		StatusCounts: stats.StatusCounts,
		Total:        stats.Total,
	}, nil
}

func (s *ClientService) Create(ctx context.Context, fields models.ClientFields) (models.Client, error) {
	accountID, err := s.auth.RequireAuthenticated(ctx)
	if err != nil {
		return models.Client{}, err
	}

	client, err := s.clients.Create(ctx, fields)
	if err != nil {
		return models.Client{}, err
	}

	s.log.Info().Int64("account_id", accountID).Int64("client_id", client.ID).Msg("client created")
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (models.Client, error) {
	if _, err := s.auth.RequireAuthenticated(ctx); err != nil {
		return models.Client{}, err
	}

	client, err := s.clients.Get(ctx, id)
	if err != nil {
		return models.Client{}, translateNotFound(err)
	}
	return client, nil
}

// Update replaces every mutable field of the client.
func (s *ClientService) Update(ctx context.Context, id int64, fields models.ClientFields) (models.Client, error) {
	accountID, err := s.auth.RequireAuthenticated(ctx)
	if err != nil {
		return models.Client{}, err
	}

	client, err := s.clients.Update(ctx, id, fields)
	if err != nil {
		return models.Client{}, translateNotFound(err)
	}

	s.log.Info().Int64("account_id", accountID).Int64("client_id", id).Msg("client updated")
	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, id int64) error {
	accountID, err := s.auth.RequireAuthenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.clients.Delete(ctx, id); err != nil {
		return translateNotFound(err)
	}

	s.log.Info().Int64("account_id", accountID).Int64("client_id", id).Msg("client deleted")
	return nil
}

// DueReminders returns clients whose reminder date is on or before day,
// oldest reminder first. Reminder dates that do not parse are skipped.
func (s *ClientService) DueReminders(ctx context.Context, day time.Time) ([]models.Client, error) {
	if _, err := s.auth.RequireAuthenticated(ctx); err != nil {
		return nil, err
	}

	all, err := s.clients.Search(ctx, "")
	if err != nil {
		return nil, err
	}

	cutoff := day.Format(models.ReminderDateLayout)
	type dated struct {
		client models.Client
		date   time.Time
	}
	var due []dated
	for _, c := range all {
		d, err := time.Parse(models.ReminderDateLayout, c.ReminderDate)
		if err != nil {
			continue
		}
		if d.Format(models.ReminderDateLayout) <= cutoff {
			due = append(due, dated{client: c, date: d})
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].date.Equal(due[j].date) {
			return due[i].date.Before(due[j].date)
		}
		return due[i].client.ID < due[j].client.ID
	})

	out := make([]models.Client, 0, len(due))
	for _, d := range due {
		out = append(out, d.client)
	}
	return out, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrClientNotFound) {
		return ErrNotFound
	}
	return err
}
