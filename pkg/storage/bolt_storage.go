package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var boltBucket = []byte("objects")

// BoltStorage implements the Storage interface on top of a single bbolt
// database file. Intended for standalone deployments where a directory tree
// of small files is undesirable.
type BoltStorage struct {
	Config Config
	db     *bbolt.DB
}

// NewBoltStorage opens or creates the bbolt database under the configured
// root. The parent directory is created if it does not exist.
func NewBoltStorage(config Config) (*BoltStorage, error) {
	path := filepath.Join(config.Root, config.Bucket+".db")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "Failed to create storage directory")
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open bolt db")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Failed to create bucket")
	}

	return &BoltStorage{Config: config, db: db}, nil
}

// Close closes the underlying database.
func (b *BoltStorage) Close() error {
	return b.db.Close()
}

// Write stores the data at key.
func (b *BoltStorage) Write(ctx context.Context, key string, body []byte,
	options *Options) error {

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), body)
	})
}

// Read returns the data stored at key.
func (b *BoltStorage) Read(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		result = make([]byte, len(v))
		copy(result, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Remove deletes the data stored at key.
func (b *BoltStorage) Remove(ctx context.Context, key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		if bucket.Get([]byte(key)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(key))
	})
}

// Search returns all objects under the prefix given by the "path" query
// entry.
func (b *BoltStorage) Search(ctx context.Context,
	query map[string]string) ([][]byte, error) {

	prefix := prefixKey(query["path"])

	objects := [][]byte{}
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			object := make([]byte, len(v))
			copy(object, v)
			objects = append(objects, object)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return objects, nil
}

// List returns the keys under the given path prefix.
func (b *BoltStorage) List(ctx context.Context, path string) ([]string, error) {
	prefix := prefixKey(path)

	keys := []string{}
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// Clear removes all objects under the prefix given by the "path" query
// entry.
func (b *BoltStorage) Clear(ctx context.Context, query map[string]string) error {
	prefix := prefixKey(query["path"])

	return b.db.Update(func(tx *bbolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func prefixKey(path string) []byte {
	if len(path) > 0 && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return []byte(path)
}
