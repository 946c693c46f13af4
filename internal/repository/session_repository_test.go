package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conectame/internal/models"
	"conectame/internal/repository"
)

func newSessionRepo(t *testing.T) (*repository.SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewSessionRepository(client), mr
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	repo, mr := newSessionRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	session := models.Session{
		ID:        "sess-1",
		AccountID: 7,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, session))
	assert.True(t, mr.Exists("session:sess-1"))
	assert.Greater(t, mr.TTL("session:sess-1"), 59*time.Minute)

	got, err := repo.GetByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.AccountID, got.AccountID)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, repo.DeleteByID(ctx, "sess-1"))
	_, err = repo.GetByID(ctx, "sess-1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, "sess-1"), repository.ErrSessionNotFound)
}

func TestSessionRepository_Expiry(t *testing.T) {
	repo, mr := newSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, models.Session{
		ID:        "sess-2",
		AccountID: 1,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	mr.FastForward(2 * time.Minute)

	_, err := repo.GetByID(ctx, "sess-2")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_RejectsExpiredSession(t *testing.T) {
	repo, _ := newSessionRepo(t)

	err := repo.Create(context.Background(), models.Session{
		ID:        "sess-3",
		AccountID: 1,
		ExpiresAt: time.Now().Add(-time.Second),
	})
	assert.Error(t, err)
}

func TestSessionRepository_Unavailable(t *testing.T) {
	repo, mr := newSessionRepo(t)
	mr.Close()

	ctx := context.Background()
	_, err := repo.GetByID(ctx, "sess-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrSessionNotFound)
	assert.Error(t, repo.Ping(ctx))
}
