// Package idgen provides id allocation for orders and cart lines.
// Production code uses UUIDs; tests inject a sequential generator so
// produced orders are deterministic.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator allocates unique string ids.
type Generator interface {
	NewID() string
}

// UUID generates random UUIDv4 ids.
type UUID struct{}

// NewID returns a fresh UUID string.
func (UUID) NewID() string { return uuid.NewString() }

// Sequential generates "ord-1", "ord-2", ... ids. Safe for concurrent use.
type Sequential struct {
	Prefix string
	n      atomic.Int64
}

// NewID returns the next id in sequence.
func (s *Sequential) NewID() string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "ord"
	}
	return fmt.Sprintf("%s-%d", prefix, s.n.Add(1))
}
