package boltdb

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conectame/internal/models"
	"conectame/internal/repository"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "conectame.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestAccountStore(t *testing.T) {
	db, _ := openTestDB(t)
	store := NewAccountStore(db)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	account, err := store.Create(ctx, "admin@admin.com", []byte("hash-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)

	_, err = store.Create(ctx, "admin@admin.com", []byte("hash-2"))
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	found, err := store.FindByEmail(ctx, "admin@admin.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("hash-1"), found.PasswordHash)
	assert.Equal(t, account.ID, found.ID)

	_, err = store.FindByEmail(ctx, "Admin@admin.com")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)

	byID, err := store.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@admin.com", byID.Email)

	_, err = store.GetByID(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAccountStore_ConcurrentDuplicate(t *testing.T) {
	db, _ := openTestDB(t)
	store := NewAccountStore(db)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Create(ctx, "race@x.com", []byte("h")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestClientStore_CRUD(t *testing.T) {
	db, _ := openTestDB(t)
	store := NewClientStore(db)
	ctx := context.Background()

	fields := models.ClientFields{
		Name:         "Ana",
		Email:        "ana@x.com",
		Company:      "Acme",
		Status:       models.StatusNew,
		ReminderDate: "2026-01-15",
	}
	created, err := store.Create(ctx, fields)
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, fields, got.ClientFields)

	fields.Status = models.StatusClosed
	fields.Phone = ""
	updated, err := store.Update(ctx, created.ID, fields)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err = store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)

	_, err = store.Update(ctx, 404, fields)
	assert.ErrorIs(t, err, repository.ErrClientNotFound)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrClientNotFound)
	assert.ErrorIs(t, store.Delete(ctx, created.ID), repository.ErrClientNotFound)

	all, err := store.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)

	// Ids are never reused after a delete.
	next, err := store.Create(ctx, fields)
	require.NoError(t, err)
	assert.Greater(t, next.ID, created.ID)
}

func TestClientStore_Search(t *testing.T) {
	db, _ := openTestDB(t)
	store := NewClientStore(db)
	ctx := context.Background()

	seed := []models.ClientFields{
		{Name: "Ana", Email: "ana@x.com", Company: "Acme"},
		{Name: "Bruno", Email: "bruno@acme.io", Company: "Beta"},
		{Name: "Carla", Email: "carla@y.com", Company: "ACME Labs"},
		{Name: "Dario", Email: "dario@z.com", Company: "100% Real", Phone: "acme"},
		{Name: "Acme Ana", Email: "acme@acme.com", Company: "Acme"},
	}
	for _, f := range seed {
		_, err := store.Create(ctx, f)
		require.NoError(t, err)
	}

	all, err := store.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, len(seed))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	for _, q := range []string{"acme", "ACME", "an", "%", "@", "zz", "real"} {
		t.Run(q, func(t *testing.T) {
			got, err := store.Search(ctx, q)
			require.NoError(t, err)

			in := make(map[int64]bool)
			for _, c := range got {
				assert.False(t, in[c.ID], "duplicate %d", c.ID)
				in[c.ID] = true
			}
			needle := strings.ToLower(q)
			for _, c := range all {
				hit := strings.Contains(strings.ToLower(c.Name), needle) ||
					strings.Contains(strings.ToLower(c.Email), needle) ||
					strings.Contains(strings.ToLower(c.Company), needle)
				assert.Equal(t, hit, in[c.ID], "client %q query %q", c.Name, q)
			}
		})
	}

	acme, err := store.Search(ctx, "acme")
	require.NoError(t, err)
	names := make([]string, 0, len(acme))
	for _, c := range acme {
		names = append(names, c.Name)
	}
	// Dario only has "acme" in the phone field, which is not searched.
	assert.Equal(t, []string{"Ana", "Bruno", "Carla", "Acme Ana"}, names)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(seed), count)
}

func TestOpen_Persists(t *testing.T) {
	db, path := openTestDB(t)
	ctx := context.Background()

	_, err := NewAccountStore(db).Create(ctx, "ana@x.com", []byte("h"))
	require.NoError(t, err)
	client, err := NewClientStore(db).Create(ctx, models.ClientFields{Name: "Ana"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = NewAccountStore(reopened).FindByEmail(ctx, "ana@x.com")
	assert.NoError(t, err)
	got, err := NewClientStore(reopened).Get(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}
