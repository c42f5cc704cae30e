package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Cached wraps a Source and keeps each keyword's results in BadgerDB for a
// fixed TTL. Failed searches are never cached.
type Cached struct {
	Source Source
	DB     *badger.DB
	TTL    time.Duration
}

// OpenCache opens (or creates) the search cache directory.
func OpenCache(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open search cache: %w", err)
	}
	return db, nil
}

// Name implements Source.
func (c *Cached) Name() string { return c.Source.Name() }

// Available implements Source.
func (c *Cached) Available(ctx context.Context) error {
	return c.Source.Available(ctx)
}

func (c *Cached) key(keyword string, limit int) []byte {
	return fmt.Appendf(nil, "search:%s:%d:%s", c.Source.Name(), limit, keyword)
}

// Search implements Source.
func (c *Cached) Search(ctx context.Context, keyword string, limit int) ([]Candidate, error) {
	key := c.key(keyword, limit)

	var cached []Candidate
	err := c.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cached)
		})
	})
	switch {
	case err == nil:
		slog.Debug("search cache hit", "source", c.Source.Name(), "keyword", keyword)
		return cached, nil
	case !errors.Is(err, badger.ErrKeyNotFound):
		slog.Warn("search cache read failed", "keyword", keyword, "error", err)
	}

	found, err := c.Source.Search(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(found)
	if err != nil {
		return found, nil
	}
	if err := c.DB.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, data).WithTTL(c.TTL))
	}); err != nil {
		slog.Warn("search cache write failed", "keyword", keyword, "error", err)
	}
	return found, nil
}
