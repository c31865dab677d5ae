// Package bbolt implements the condstore backend on go.etcd.io/bbolt, the
// default store for single-process use.
package bbolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/LeJamon/go-cryptoconditions/internal/storage/condstore"
)

var bucketName = []byte("records")

// Database is a condstore.DB backed by a single-bucket bbolt file.
type Database struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt file at path.
func Open(path string) (*Database, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return &Database{db: db}, nil
}

func (d *Database) Read(ctx context.Context, key []byte) ([]byte, error) {
	if d.db == nil {
		return nil, condstore.ErrClosed
	}
	var value []byte
	err := d.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get(key)
		if v == nil {
			return condstore.ErrNotFound
		}
		// bbolt values are only valid inside the transaction.
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (d *Database) Write(ctx context.Context, key, value []byte) error {
	if d.db == nil {
		return condstore.ErrClosed
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	})
}

func (d *Database) Delete(ctx context.Context, key []byte) error {
	if d.db == nil {
		return condstore.ErrClosed
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	})
}

// Iterator snapshots the requested range inside a read transaction; the
// returned iterator owns copies and needs no live cursor.
func (d *Database) Iterator(ctx context.Context, start, end []byte) (condstore.Iterator, error) {
	if d.db == nil {
		return nil, condstore.ErrClosed
	}
	it := &iterator{pos: -1}
	err := d.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		k, v := c.First()
		if start != nil {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if end != nil && bytes.Compare(k, end) >= 0 {
				break
			}
			it.keys = append(it.keys, append([]byte(nil), k...))
			it.values = append(it.values, append([]byte(nil), v...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	if err != nil && !errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return err
	}
	return nil
}

type iterator struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

func (it *iterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		return false
	}
	it.pos++
	return true
}

func (it *iterator) Key() []byte {
	if it.pos < 0 || it.pos >= len(it.keys) {
		return nil
	}
	return it.keys[it.pos]
}

func (it *iterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.values) {
		return nil
	}
	return it.values[it.pos]
}

func (it *iterator) Error() error { return nil }
func (it *iterator) Close() error { return nil }
