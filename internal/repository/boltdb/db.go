// Package boltdb stores accounts and clients in a single bbolt file. It is
// the embedded alternative to the postgres repositories and returns the same
// sentinel errors.
package boltdb

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketAccounts      = []byte("accounts")
	bucketAccountEmails = []byte("account_emails")
	bucketClients       = []byte("clients")
)

// DB is an open bbolt database with every bucket created.
type DB struct {
	bolt *bbolt.DB
}

func Open(path string) (*DB, error) {
	if path == "" {
		path = "conectame.db"
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketAccounts, bucketAccountEmails, bucketClients} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &DB{bolt: db}, nil
}

func (d *DB) Close() error {
	return d.bolt.Close()
}

// itob encodes ids big-endian so cursor order equals id order.
func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
