// Package bolt provides a bbolt-backed store for recorded requests.
package bolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/getmockd/faque/pkg/requestlog"
	"github.com/getmockd/faque/pkg/store"
)

var bucketRequests = []byte("requests")

// openTimeout bounds how long Open waits for the file lock held by another process.
const openTimeout = time.Second

// HistoryStore persists request records keyed by id.
// Keys are time-sortable ids, so cursor order is recording order.
type HistoryStore struct {
	db *bbolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*HistoryStore, error) {
	if err := store.EnsureDir(path); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketRequests)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Close closes the database.
func (s *HistoryStore) Close() error { return s.db.Close() }

// Put stores rec under its id, replacing any previous value.
func (s *HistoryStore) Put(rec *requestlog.Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("record without id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRequests).Put([]byte(rec.ID), data)
	})
}

// List returns all records, oldest first.
func (s *HistoryStore) List() ([]*requestlog.Record, error) {
	var res []*requestlog.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRequests).ForEach(func(k, v []byte) error {
			var rec requestlog.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to decode record %s: %w", k, err)
			}
			res = append(res, &rec)
			return nil
		})
	})
	return res, err
}

// IDs returns all stored ids, oldest first.
func (s *HistoryStore) IDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRequests).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			ids = append(ids, string(k))
		}
		return nil
	})
	return ids, err
}

// Delete removes the given ids. Unknown ids are ignored.
func (s *HistoryStore) Delete(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRequests)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
}
