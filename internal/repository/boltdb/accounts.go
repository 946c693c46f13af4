package boltdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"

	"conectame/internal/models"
	"conectame/internal/repository"
)

type accountRecord struct {
	Email        string    `cbor:"1,keyasint"`
	PasswordHash []byte    `cbor:"2,keyasint"`
	CreatedAt    time.Time `cbor:"3,keyasint"`
}

type AccountStore struct {
	db *DB
}

func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Create checks the email index and inserts in the same write transaction,
// so two concurrent registrations cannot both succeed.
func (s *AccountStore) Create(ctx context.Context, email string, passwordHash []byte) (models.Account, error) {
	account := models.Account{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.db.bolt.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket(bucketAccountEmails)
		if emails.Get([]byte(email)) != nil {
			return repository.ErrEmailTaken
		}

		accounts := tx.Bucket(bucketAccounts)
		seq, err := accounts.NextSequence()
		if err != nil {
			return err
		}
		account.ID = int64(seq)

		data, err := cbor.Marshal(accountRecord{
			Email:        account.Email,
			PasswordHash: account.PasswordHash,
			CreatedAt:    account.CreatedAt,
		})
		if err != nil {
			return err
		}
		if err := accounts.Put(itob(account.ID), data); err != nil {
			return err
		}
		return emails.Put([]byte(email), itob(account.ID))
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.Account{}, err
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	var account models.Account
	err := s.db.bolt.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketAccountEmails).Get([]byte(email))
		if id == nil {
			return repository.ErrAccountNotFound
		}
		var err error
		account, err = getAccount(tx, btoi(id))
		return err
	})
	return account, err
}

func (s *AccountStore) GetByID(ctx context.Context, id int64) (models.Account, error) {
	var account models.Account
	err := s.db.bolt.View(func(tx *bbolt.Tx) error {
		var err error
		account, err = getAccount(tx, id)
		return err
	})
	return account, err
}

func (s *AccountStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.bolt.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketAccounts).Stats().KeyN
		return nil
	})
	return count, err
}

func getAccount(tx *bbolt.Tx, id int64) (models.Account, error) {
	data := tx.Bucket(bucketAccounts).Get(itob(id))
	if data == nil {
		return models.Account{}, repository.ErrAccountNotFound
	}

	var rec accountRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return models.Account{}, fmt.Errorf("decode account %d: %w", id, err)
	}
	return models.Account{
		ID:           id,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}
