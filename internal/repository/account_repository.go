package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"conectame/internal/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. The unique index on email makes a
// concurrent duplicate fail with ErrEmailTaken instead of overwriting.
func (r *AccountRepository) Create(ctx context.Context, email string, passwordHash []byte) (models.Account, error) {
	const query = `
		INSERT INTO accounts (email, password_hash, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	account := models.Account{Email: email, PasswordHash: passwordHash}
	if err := r.db.QueryRow(ctx, query, email, passwordHash).Scan(&account.ID, &account.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, ErrEmailTaken
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	const query = `
		SELECT id, email, password_hash, created_at
		FROM accounts WHERE email = $1
	`
	return r.scanOne(ctx, query, email)
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (models.Account, error) {
	const query = `
		SELECT id, email, password_hash, created_at
		FROM accounts WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM accounts`
	var count int
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return count, nil
}

func (r *AccountRepository) scanOne(ctx context.Context, query string, arg any) (models.Account, error) {
	var account models.Account
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, fmt.Errorf("select account: %w", err)
	}
	return account, nil
}
