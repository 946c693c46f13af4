package boltdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"

	"conectame/internal/models"
	"conectame/internal/repository"
)

type clientRecord struct {
	Name         string `cbor:"1,keyasint"`
	Email        string `cbor:"2,keyasint"`
	Phone        string `cbor:"3,keyasint"`
	Company      string `cbor:"4,keyasint"`
	Status       string `cbor:"5,keyasint"`
	Note         string `cbor:"6,keyasint"`
	ReminderDate string `cbor:"7,keyasint"`
}

type ClientStore struct {
	db *DB
}

func NewClientStore(db *DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) Create(ctx context.Context, fields models.ClientFields) (models.Client, error) {
	client := models.Client{ClientFields: fields}
	err := s.db.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketClients)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		client.ID = int64(seq)
		return putClient(b, client.ID, fields)
	})
	if err != nil {
		return models.Client{}, fmt.Errorf("insert client: %w", err)
	}
	return client, nil
}

func (s *ClientStore) Get(ctx context.Context, id int64) (models.Client, error) {
	var client models.Client
	err := s.db.bolt.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketClients).Get(itob(id))
		if data == nil {
			return repository.ErrClientNotFound
		}
		var err error
		client, err = decodeClient(id, data)
		return err
	})
	return client, err
}

func (s *ClientStore) Update(ctx context.Context, id int64, fields models.ClientFields) (models.Client, error) {
	err := s.db.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketClients)
		if b.Get(itob(id)) == nil {
			return repository.ErrClientNotFound
		}
		return putClient(b, id, fields)
	})
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return models.Client{}, err
		}
		return models.Client{}, fmt.Errorf("update client: %w", err)
	}
	return models.Client{ID: id, ClientFields: fields}, nil
}

func (s *ClientStore) Delete(ctx context.Context, id int64) error {
	return s.db.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketClients)
		key := itob(id)
		if b.Get(key) == nil {
			return repository.ErrClientNotFound
		}
		return b.Delete(key)
	})
}

// Search matches term as a case-insensitive substring of name, email or
// company. Cursor order is id order.
func (s *ClientStore) Search(ctx context.Context, term string) ([]models.Client, error) {
	needle := strings.ToLower(term)
	clients := make([]models.Client, 0)

	err := s.db.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketClients).ForEach(func(k, v []byte) error {
			client, err := decodeClient(btoi(k), v)
			if err != nil {
				return err
			}
			if needle == "" || matches(client, needle) {
				clients = append(clients, client)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return clients, nil
}

func (s *ClientStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.bolt.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketClients).Stats().KeyN
		return nil
	})
	return count, err
}

func matches(c models.Client, needle string) bool {
	return strings.Contains(strings.ToLower(c.Name), needle) ||
		strings.Contains(strings.ToLower(c.Email), needle) ||
		strings.Contains(strings.ToLower(c.Company), needle)
}

func putClient(b *bbolt.Bucket, id int64, fields models.ClientFields) error {
	data, err := cbor.Marshal(clientRecord(fields))
	if err != nil {
		return err
	}
	return b.Put(itob(id), data)
}

func decodeClient(id int64, data []byte) (models.Client, error) {
	var rec clientRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return models.Client{}, fmt.Errorf("decode client %d: %w", id, err)
	}
	return models.Client{ID: id, ClientFields: models.ClientFields(rec)}, nil
}
