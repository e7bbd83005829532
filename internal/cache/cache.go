package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/alexisbeaulieu97/docsmith/internal/logger"
)

// Invoker mirrors the engine's model invocation boundary so the cache can
// decorate any backend without importing it.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Store persists model responses on disk, keyed by a hash of the prompt.
// Entries expire after the configured TTL.
type Store struct {
	db  *badger.DB
	ttl time.Duration
	log *logger.Logger
}

// Open creates or reopens the cache database at dir.
func Open(dir string, ttl time.Duration, log *logger.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, ttl: ttl, log: log}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached response for prompt, if present and unexpired.
func (s *Store) Get(prompt string) (string, bool, error) {
	var response string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(prompt))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			response = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return response, true, nil
}

// Set stores the response for prompt with the configured TTL.
func (s *Store) Set(prompt, response string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key(prompt), []byte(response))
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

func key(prompt string) []byte {
	sum := sha256.Sum256([]byte(prompt))
	return []byte("response:" + hex.EncodeToString(sum[:]))
}

// cachingInvoker serves responses from the store and falls through to the
// wrapped backend on a miss. Cache failures degrade to direct invocation.
type cachingInvoker struct {
	next  Invoker
	store *Store
	log   *logger.Logger
}

// Wrap decorates an invoker with response caching.
func Wrap(next Invoker, store *Store, log *logger.Logger) Invoker {
	return &cachingInvoker{next: next, store: store, log: log}
}

func (c *cachingInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	cached, ok, err := c.store.Get(prompt)
	if err != nil {
		c.log.Error(err, "cache read failed")
	} else if ok {
		c.log.Debug("cache hit")
		return cached, nil
	}

	response, err := c.next.Invoke(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := c.store.Set(prompt, response); err != nil {
		c.log.Error(err, "cache write failed")
	}
	return response, nil
}
