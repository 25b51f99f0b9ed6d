// Package cache stores resolved album records durably so repeat runs avoid
// redundant remote lookups. Keys are the exact (artist, album) tag pair with
// no normalization; negative lookups are never stored.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"tagsmith/internal/shared"
)

// keySeparator joins artist and album into a single badger key. 0x1f is the
// ASCII unit separator and cannot appear in vorbis tag values read as text.
const keySeparator = "\x1f"

// Store wraps a Badger database holding album records.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the cache at the given directory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable Badger's internal logging
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func recordKey(artist, album string) []byte {
	return []byte(artist + keySeparator + album)
}

// Get returns the cached record for the exact (artist, album) pair. A read
// failure is reported as a miss so a fresh fetch can repair the entry.
func (s *Store) Get(artist, album string) (*shared.AlbumRecord, bool) {
	var record shared.AlbumRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(artist, album))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			shared.DebugPrint(shared.IsDebugMode(), "cache read failed for %s - %s: %v", artist, album, err)
		}
		return nil, false
	}
	return &record, true
}

// Put stores a record, overwriting any existing entry for the same key.
func (s *Store) Put(artist, album string, record *shared.AlbumRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal album record: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(artist, album), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store album record: %w", err)
	}
	return nil
}

// Clear removes all entries.
func (s *Store) Clear() error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Dump returns all entries keyed "artist - album". No side effects.
func (s *Store) Dump() (map[string]shared.AlbumRecord, error) {
	entries := make(map[string]shared.AlbumRecord)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			artist, album, ok := splitKey(item.Key())
			if !ok {
				continue
			}
			var record shared.AlbumRecord
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			entries[fmt.Sprintf("%s - %s", artist, album)] = record
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dump cache: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func splitKey(key []byte) (artist, album string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == keySeparator[0] {
			return string(key[:i]), string(key[i+1:]), true
		}
	}
	return "", "", false
}
