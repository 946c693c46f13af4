package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"conectame/internal/config"
	"conectame/internal/ids"
	"conectame/internal/models"
	"conectame/internal/repository"
	"conectame/internal/security"
)

// AccountStore persists operator accounts. Implementations return
// repository.ErrAccountNotFound and repository.ErrEmailTaken.
type AccountStore interface {
	Create(ctx context.Context, email string, passwordHash []byte) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	GetByID(ctx context.Context, id int64) (models.Account, error)
	Count(ctx context.Context) (int, error)
}

// SessionStore persists server-side session records. Implementations return
// repository.ErrSessionNotFound.
type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type AuthService struct {
	accounts  AccountStore
	sessions  SessionStore
	cfg       *config.AppConfig
	log       zerolog.Logger
	dummyHash []byte
	now       func() time.Time
}

func NewAuthService(
	accounts AccountStore,
	sessions SessionStore,
	cfg *config.AppConfig,
	log zerolog.Logger,
) (*AuthService, error) {
	// Verified against when the email is unknown, so both login failures
	// cost one hash computation.
	dummy, err := security.HashPassword(ids.New())
	if err != nil {
		return nil, fmt.Errorf("init dummy hash: %w", err)
	}

	return &AuthService{
		accounts:  accounts,
		sessions:  sessions,
		cfg:       cfg,
		log:       log,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

type LoginResult struct {
	Account models.Account
	Session models.Session
	Token   string
}

func (s *AuthService) Register(ctx context.Context, email string, password string) (models.Account, error) {
	if email == "" || password == "" {
		return models.Account{}, ErrMissingCredentials
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return models.Account{}, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return models.Account{}, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return models.Account{}, err
	}

	account, err := s.accounts.Create(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.Account{}, ErrDuplicateEmail
		}
		return models.Account{}, err
	}

	s.log.Info().Int64("account_id", account.ID).Msg("account registered")
	return account, nil
}

// Login returns ErrInvalidCredentials for an unknown email and for a wrong
// password alike.
func (s *AuthService) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			_, _ = security.VerifyPassword(password, s.dummyHash)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Int64("account_id", account.ID).Msg("stored password hash unreadable")
		return LoginResult{}, ErrInvalidCredentials
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.now()
	session := models.Session{
		ID:        ids.New(),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.Security.SessionTTL),
	}

	token, err := security.GenerateSessionToken(
		s.cfg.Security.SessionSecret,
		session.ID,
		account.ID,
		now,
		s.cfg.Security.SessionTTL,
	)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return LoginResult{}, err
	}

	s.log.Info().Int64("account_id", account.ID).Str("session_id", session.ID).Msg("login")
	return LoginResult{Account: account, Session: session, Token: token}, nil
}

// Logout revokes the session behind token. Unknown or invalid tokens are
// not an error: there is nothing left to revoke.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := security.ParseSessionToken(token, s.cfg.Security.SessionSecret)
	if err != nil {
		return nil
	}

	if err := s.sessions.DeleteByID(ctx, claims.SessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return err
	}

	s.log.Info().Int64("account_id", claims.AccountID).Str("session_id", claims.SessionID).Msg("logout")
	return nil
}

// CurrentIdentity resolves the session token carried by ctx. Missing,
// expired, tampered, revoked or orphaned tokens give ok == false; err is set
// only when a store could not be reached.
func (s *AuthService) CurrentIdentity(ctx context.Context) (accountID int64, ok bool, err error) {
	token := SessionTokenFrom(ctx)
	if token == "" {
		return 0, false, nil
	}

	claims, err := security.ParseSessionToken(token, s.cfg.Security.SessionSecret)
	if err != nil {
		s.log.Debug().Err(err).Msg("session token rejected")
		return 0, false, nil
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("resolve session: %w", err)
	}
	if session.AccountID != claims.AccountID {
		return 0, false, nil
	}

	if _, err := s.accounts.GetByID(ctx, claims.AccountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("resolve account: %w", err)
	}

	return claims.AccountID, true, nil
}

func (s *AuthService) RequireAuthenticated(ctx context.Context) (int64, error) {
	accountID, ok, err := s.CurrentIdentity(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUnauthenticated
	}
	return accountID, nil
}

// Bootstrap creates the configured default account when no account exists
// yet. The default credential (admin@admin.com / 1234) is public knowledge;
// it is logged at WARN so operators notice it and replace it.
func (s *AuthService) Bootstrap(ctx context.Context) (bool, error) {
	if !s.cfg.Bootstrap.Enabled {
		return false, nil
	}

	count, err := s.accounts.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	account, err := s.Register(ctx, s.cfg.Bootstrap.Email, s.cfg.Bootstrap.Password)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap account: %w", err)
	}

	s.log.Warn().
		Int64("account_id", account.ID).
		Str("email", account.Email).
		Msg("created default bootstrap account with a well-known password; change it or disable bootstrap")
	return true, nil
}
