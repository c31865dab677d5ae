// Package pebble implements the condstore backend on cockroachdb/pebble for
// deployments with large record counts.
package pebble

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/LeJamon/go-cryptoconditions/internal/storage/condstore"
)

// Database is a condstore.DB backed by a pebble store.
type Database struct {
	db *pebble.DB
}

// Open opens or creates the pebble store at path.
func Open(path string) (*Database, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	return &Database{db: db}, nil
}

func (d *Database) Read(ctx context.Context, key []byte) ([]byte, error) {
	if d.db == nil {
		return nil, condstore.ErrClosed
	}
	val, closer, err := d.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, condstore.ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	// Copy the value out; it is only valid until the closer is released.
	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	return valCopy, nil
}

func (d *Database) Write(ctx context.Context, key, value []byte) error {
	if d.db == nil {
		return condstore.ErrClosed
	}
	return d.db.Set(key, value, pebble.Sync)
}

func (d *Database) Delete(ctx context.Context, key []byte) error {
	if d.db == nil {
		return condstore.ErrClosed
	}
	return d.db.Delete(key, pebble.Sync)
}

func (d *Database) Iterator(ctx context.Context, start, end []byte) (condstore.Iterator, error) {
	if d.db == nil {
		return nil, condstore.ErrClosed
	}
	it, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, err
	}
	return &iterator{it: it, first: true}, nil
}

func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

type iterator struct {
	it    *pebble.Iterator
	first bool
}

func (it *iterator) Next() bool {
	if it.first {
		it.first = false
		return it.it.First()
	}
	return it.it.Next()
}

func (it *iterator) Key() []byte {
	k := it.it.Key()
	out := make([]byte, len(k))
	copy(out, k)
	return out
}

func (it *iterator) Value() []byte {
	v := it.it.Value()
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (it *iterator) Error() error { return it.it.Error() }
func (it *iterator) Close() error { return it.it.Close() }
