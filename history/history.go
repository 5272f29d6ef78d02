// Package history persists completed dictations in a local badger store so
// the UI can show (and re-copy) recent transcripts.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"go.aimuz.me/murmur/internal/types"
)

// DefaultTTL bounds how long entries are kept.
const DefaultTTL = 30 * 24 * time.Hour

const keyPrefix = "dictation:"

// Store is a badger-backed transcript history.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// New opens (or creates) the history store at path.
func New(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithValueLogFileSize(16 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	return &Store{db: db, ttl: ttl}, nil
}

// Add records a completed dictation. The entry ID and timestamp are filled in
// when absent.
func (s *Store) Add(entry types.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().UnixMilli()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	// Key ordered by timestamp so iteration in reverse yields newest first.
	key := fmt.Sprintf("%s%020d:%s", keyPrefix, entry.CreatedAt, entry.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data).WithTTL(s.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(n int) ([]types.HistoryEntry, error) {
	if n <= 0 {
		n = 20
	}

	var entries []types.HistoryEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek key past the prefix range.
		seek := append([]byte(keyPrefix), 0xff)
		for it.Seek(seek); it.ValidForPrefix([]byte(keyPrefix)) && len(entries) < n; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry types.HistoryEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
