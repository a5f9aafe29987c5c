// Package lockout provides TTL-backed stores for the security gate's
// brute-force counters. The Redis store is the production choice: counters
// survive restarts and are shared across instances. The in-memory store is
// single-node and suits tests and local development.
package lockout

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/obiora/bankcore/pkg/security"
)

// MemoryStore tracks PIN failures in-process with TTL expiry.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an in-memory lockout store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(security.LockoutWindow, time.Minute),
	}
}

// Failures implements security.LockoutStore.
func (s *MemoryStore) Failures(_ context.Context, accountNumber string) (int, error) {
	if v, ok := s.cache.Get(accountNumber); ok {
		return v.(int), nil
	}
	return 0, nil
}

// RecordFailure implements security.LockoutStore.
func (s *MemoryStore) RecordFailure(_ context.Context, accountNumber string, window time.Duration) (int, error) {
	count := 1
	if v, ok := s.cache.Get(accountNumber); ok {
		count = v.(int) + 1
	}
	s.cache.Set(accountNumber, count, window)
	return count, nil
}

// Reset implements security.LockoutStore.
func (s *MemoryStore) Reset(_ context.Context, accountNumber string) error {
	s.cache.Delete(accountNumber)
	return nil
}

var _ security.LockoutStore = (*MemoryStore)(nil)
