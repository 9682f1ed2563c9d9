package kvstore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("toughpos")

// BoltStore keeps every key in a single bbolt bucket
type BoltStore struct {
	notifier
	db *bolt.DB
}

// OpenBolt opens (creating when needed) the database file at path
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create bucket")
	}
	return &BoltStore{notifier: newNotifier(), db: db}, nil
}

func (s *BoltStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// bolt memory is only valid inside the transaction
		value = append([]byte(nil), v...)
		return nil
	})
	return value, err
}

func (s *BoltStore) Set(key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
	if err != nil {
		return err
	}
	s.publish(key, value)
	return nil
}

// Backup writes a consistent copy of the database to dest
func (s *BoltStore) Backup(dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(dest, 0o600)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
