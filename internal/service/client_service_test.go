package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conectame/internal/models"
	"conectame/internal/service"
)

func TestClientService_RequiresSession(t *testing.T) {
	f := newFixture(t)
	anon := context.Background()
	stale := service.WithSessionToken(anon, "stale-token")

	for _, ctx := range []context.Context{anon, stale} {
		_, err := f.clients.List(ctx, "")
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
		_, err = f.clients.Create(ctx, models.ClientFields{Name: "X"})
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
		_, err = f.clients.Get(ctx, 1)
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
		_, err = f.clients.Update(ctx, 1, models.ClientFields{})
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
		err = f.clients.Delete(ctx, 1)
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
		_, err = f.clients.DueReminders(ctx, time.Now())
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
	}

	assert.Zero(t, f.store.calls.Load(), "no store call may happen without a session")
}

func TestClientService_AnaAcmeScenario(t *testing.T) {
	f := newFixture(t)
	ctx := f.login(t, "a@x.com", "pw")

	created, err := f.clients.Create(ctx, models.ClientFields{
		Name:    "Ana",
		Email:   "ana@acme.com",
		Company: "Acme",
		Status:  models.StatusNew,
	})
	require.NoError(t, err)

	list, err := f.clients.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list.Clients, 1)
	assert.Equal(t, created, list.Clients[0])
	assert.Equal(t, "acme", list.Query)
	assert.Equal(t, map[string]int{
		models.StatusNew:        1,
		models.StatusInProgress: 0,
		models.StatusClosed:     0,
		models.StatusLost:       0,
	}, list.StatusCounts)
	assert.Equal(t, 1, list.Total)

	updated := created.ClientFields
	updated.Status = models.StatusClosed
	_, err = f.clients.Update(ctx, created.ID, updated)
	require.NoError(t, err)

	list, err = f.clients.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, list.StatusCounts[models.StatusNew])
	assert.Equal(t, 1, list.StatusCounts[models.StatusClosed])

	require.NoError(t, f.clients.Delete(ctx, created.ID))

	list, err = f.clients.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list.Clients)
	assert.Equal(t, 0, list.Total)
	for _, status := range models.Statuses {
		assert.Equal(t, 0, list.StatusCounts[status])
	}
}

func TestClientService_RoundTripAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := f.login(t, "a@x.com", "pw")

	fields := models.ClientFields{
		Name:         "Bea",
		Email:        "bea@example.com",
		Phone:        "+34 600 000 000",
		Company:      "Beta SL",
		Status:       models.StatusInProgress,
		Note:         "call back",
		ReminderDate: "2024-05-01",
	}
	created, err := f.clients.Create(ctx, fields)
	require.NoError(t, err)

	got, err := f.clients.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, fields, got.ClientFields)

	replaced := models.ClientFields{Name: "Bea B."}
	got, err = f.clients.Update(ctx, created.ID, replaced)
	require.NoError(t, err)
	assert.Equal(t, replaced, got.ClientFields, "update replaces every field")

	require.NoError(t, f.clients.Delete(ctx, created.ID))

	_, err = f.clients.Get(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.clients.Update(ctx, created.ID, replaced)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.clients.Delete(ctx, created.ID), service.ErrNotFound)
}

func TestClientService_CountsNeverExceedTotal(t *testing.T) {
	f := newFixture(t)
	ctx := f.login(t, "a@x.com", "pw")

	statuses := []string{models.StatusNew, models.StatusLost, "Won", "", models.StatusNew, "new"}
	for i, status := range statuses {
		_, err := f.clients.Create(ctx, models.ClientFields{Name: string(rune('a' + i)), Status: status})
		require.NoError(t, err)
	}

	list, err := f.clients.List(ctx, "")
	require.NoError(t, err)

	sum := 0
	for _, n := range list.StatusCounts {
		sum += n
	}
	assert.Len(t, list.StatusCounts, len(models.Statuses))
	assert.Equal(t, 2, list.StatusCounts[models.StatusNew])
	assert.Equal(t, 1, list.StatusCounts[models.StatusLost])
	assert.Equal(t, len(statuses), list.Total)
	assert.Equal(t, 3, sum, "non-canonical statuses fall in no bucket")
	assert.Less(t, sum, list.Total)
}

func TestClientService_CountsIgnoreQuery(t *testing.T) {
	f := newFixture(t)
	ctx := f.login(t, "a@x.com", "pw")

	_, err := f.clients.Create(ctx, models.ClientFields{Name: "Ana", Status: models.StatusNew})
	require.NoError(t, err)
	_, err = f.clients.Create(ctx, models.ClientFields{Name: "Luis", Status: models.StatusLost})
	require.NoError(t, err)

	list, err := f.clients.List(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, list.Clients, 1)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.StatusCounts[models.StatusLost])
}

func TestClientService_DueReminders(t *testing.T) {
	f := newFixture(t)
	ctx := f.login(t, "a@x.com", "pw")

	create := func(name, date string) models.Client {
		c, err := f.clients.Create(ctx, models.ClientFields{Name: name, ReminderDate: date})
		require.NoError(t, err)
		return c
	}
	late := create("late", "2024-03-10")
	_ = create("future", "2024-03-20")
	early := create("early", "2024-03-01")
	_ = create("blank", "")
	_ = create("garbage", "next week")
	today := create("today", "2024-03-15")
	sameDay := create("same day", "2024-03-01")

	day := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	due, err := f.clients.DueReminders(ctx, day)
	require.NoError(t, err)

	var got []int64
	for _, c := range due {
		got = append(got, c.ID)
	}
	assert.Equal(t, []int64{early.ID, sameDay.ID, late.ID, today.ID}, got)
}
