package service_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"conectame/internal/config"
	"conectame/internal/models"
	"conectame/internal/repository"
	"conectame/internal/repository/boltdb"
	"conectame/internal/service"
)

const testSecret = "test-session-secret"

type fixture struct {
	auth     *service.AuthService
	clients  *service.ClientService
	store    *countingStore
	accounts *boltdb.AccountStore
	sessions *repository.SessionRepository
	redis    *miniredis.Miniredis
	cfg      *config.AppConfig
}

// countingStore records how many calls reach the underlying client store.
type countingStore struct {
	service.ClientStore
	calls atomic.Int64
}

func (c *countingStore) Create(ctx context.Context, f models.ClientFields) (models.Client, error) {
	c.calls.Add(1)
	return c.ClientStore.Create(ctx, f)
}

func (c *countingStore) Get(ctx context.Context, id int64) (models.Client, error) {
	c.calls.Add(1)
	return c.ClientStore.Get(ctx, id)
}

func (c *countingStore) Update(ctx context.Context, id int64, f models.ClientFields) (models.Client, error) {
	c.calls.Add(1)
	return c.ClientStore.Update(ctx, id, f)
}

func (c *countingStore) Delete(ctx context.Context, id int64) error {
	c.calls.Add(1)
	return c.ClientStore.Delete(ctx, id)
}

func (c *countingStore) Search(ctx context.Context, term string) ([]models.Client, error) {
	c.calls.Add(1)
	return c.ClientStore.Search(ctx, term)
}

func (c *countingStore) Count(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return c.ClientStore.Count(ctx)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := boltdb.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.AppConfig{
		Security: config.SecurityConfig{
			SessionSecret: testSecret,
			SessionTTL:    time.Hour,
		},
		Bootstrap: config.BootstrapConfig{
			Enabled:  true,
			Email:    "admin@admin.com",
			Password: "1234",
		},
	}

	accounts := boltdb.NewAccountStore(db)
	sessions := repository.NewSessionRepository(rdb)
	auth, err := service.NewAuthService(accounts, sessions, cfg, zerolog.Nop())
	require.NoError(t, err)

	store := &countingStore{ClientStore: boltdb.NewClientStore(db)}

	return &fixture{
		auth:     auth,
		clients:  service.NewClientService(auth, store, zerolog.Nop()),
		store:    store,
		accounts: accounts,
		sessions: sessions,
		redis:    mr,
		cfg:      cfg,
	}
}

// login registers an account and returns a context carrying its session.
func (f *fixture) login(t *testing.T, email, password string) context.Context {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.Register(ctx, email, password)
	require.NoError(t, err)
	res, err := f.auth.Login(ctx, email, password)
	require.NoError(t, err)
	return service.WithSessionToken(ctx, res.Token)
}
