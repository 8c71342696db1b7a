package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var bucketCycles = []byte("cycles")

// BoltStore implements Store using BoltDB.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the history database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketCycles); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketCycles, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Record saves c, keyed by start time so a cursor walks cycles in order.
func (s *BoltStore) Record(ctx context.Context, c *Cycle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cycle: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCycles).Put(cycleKey(c.StartedAt, c.ID), data)
	})
}

// List returns up to limit cycles, newest first.
func (s *BoltStore) List(ctx context.Context, limit int) ([]Cycle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cycles []Cycle
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketCycles).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(cycles) >= limit {
				break
			}
			var cycle Cycle
			if err := json.Unmarshal(v, &cycle); err != nil {
				return fmt.Errorf("failed to decode cycle %x: %w", k, err)
			}
			cycles = append(cycles, cycle)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cycles, nil
}

// cycleKey is the big-endian start time (8 bytes) followed by the id
// (16 bytes).
func cycleKey(startedAt time.Time, id uuid.UUID) []byte {
	key := make([]byte, 8+len(id))
	binary.BigEndian.PutUint64(key, uint64(startedAt.UnixNano()))
	copy(key[8:], id[:])
	return key
}
