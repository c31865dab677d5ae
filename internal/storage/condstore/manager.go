package condstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LeJamon/go-cryptoconditions"
)

// Options configures a Manager.
type Options struct {
	// CacheSize is the number of decoded records kept in memory.
	CacheSize int

	// CompressionThreshold is the encoded-record size, in bytes, at which
	// lz4 kicks in. Zero or negative disables compression.
	CompressionThreshold int
}

// DefaultCacheSize is used when Options.CacheSize is not positive.
const DefaultCacheSize = 256

// Manager wraps a backend with record encoding, URI validation and an LRU
// read cache.
type Manager struct {
	mu         sync.Mutex
	db         DB
	cache      *lru.Cache[string, *Record]
	compressAt int
	closed     bool

	now func() time.Time
}

// NewManager wraps db. The manager takes ownership of the backend and closes
// it on Close.
func NewManager(db DB, opts Options) (*Manager, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Record](size)
	if err != nil {
		return nil, err
	}
	return &Manager{
		db:         db,
		cache:      cache,
		compressAt: opts.CompressionThreshold,
		now:        time.Now,
	}, nil
}

// Put stores a record under its name, overwriting any previous one. The
// record's URI must parse as its declared kind and re-encode to its Binary
// field; storing an inconsistent record would poison every later read.
func (m *Manager) Put(ctx context.Context, rec *Record) error {
	if err := m.check(); err != nil {
		return err
	}
	if rec.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecord)
	}
	if err := validateRecord(rec); err != nil {
		return err
	}
	stored := *rec
	if stored.CreatedAt == 0 {
		stored.CreatedAt = m.now().Unix()
	}
	value, err := encodeRecord(&stored, m.compressAt)
	if err != nil {
		return err
	}
	if err := m.db.Write(ctx, []byte(stored.Name), value); err != nil {
		return err
	}
	m.cache.Add(stored.Name, &stored)
	return nil
}

// Get returns the record stored under name.
func (m *Manager) Get(ctx context.Context, name string) (*Record, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	if rec, ok := m.cache.Get(name); ok {
		return rec, nil
	}
	value, err := m.db.Read(ctx, []byte(name))
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(value)
	if err != nil {
		return nil, err
	}
	if err := validateRecord(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	m.cache.Add(name, rec)
	return rec, nil
}

// Delete removes the record stored under name.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := m.check(); err != nil {
		return err
	}
	m.cache.Remove(name)
	return m.db.Delete(ctx, []byte(name))
}

// List returns every stored record name.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	it, err := m.db.Iterator(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var names []string
	for it.Next() {
		names = append(names, string(it.Key()))
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return names, nil
}

// Close releases the cache and the backend.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.cache.Purge()
	return m.db.Close()
}

func (m *Manager) check() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// validateRecord re-parses the record's URI and checks it against the stored
// binary form.
func validateRecord(rec *Record) error {
	switch rec.Kind {
	case KindCondition:
		cond, err := cryptoconditions.ParseConditionURI(rec.URI)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		if string(cond.Binary()) != string(rec.Binary) {
			return fmt.Errorf("%w: binary does not match URI", ErrInvalidRecord)
		}
	case KindFulfillment:
		f, err := cryptoconditions.ParseFulfillmentURI(rec.URI)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		b, err := cryptoconditions.FulfillmentBinary(f)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		if string(b) != string(rec.Binary) {
			return fmt.Errorf("%w: binary does not match URI", ErrInvalidRecord)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidRecord, rec.Kind)
	}
	return nil
}
