package store

import (
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/outofforest/quicchat/types"
	"github.com/outofforest/varuint64"
)

// New creates new empty store. Capacity is the limit of Size, zero means no limit.
func New(capacity uint64) *Store {
	return &Store{
		capacity: capacity,
	}
}

// Store keeps posted messages in the order they arrived.
type Store struct {
	capacity uint64

	mu       sync.RWMutex
	messages []string
	size     uint64
}

// Append adds message at the end. types.ErrStoreFull is returned if message does not fit.
func (s *Store) Append(content string) error {
	n := entrySize(content)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 && s.size+n > s.capacity {
		return errors.Wrapf(types.ErrStoreFull, "message of %d bytes does not fit, %d of %d bytes used",
			n, s.size, s.capacity)
	}

	s.messages = append(s.messages, content)
	s.size += n
	return nil
}

// Clear removes all the messages.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.size = 0
}

// Snapshot returns a copy of stored messages.
func (s *Store) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.messages)
}

// Len returns the number of stored messages.
func (s *Store) Len() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.messages))
}

// Size returns the number of bytes taken by stored messages, each counted together with its length prefix.
func (s *Store) Size() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.size
}

func entrySize(content string) uint64 {
	l := uint64(len(content))
	return varuint64.Size(l) + l
}
