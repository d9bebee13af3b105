// Package idgen provides the identifier generators injected into stores.
// Identifiers keep a readable prefix (hold_, chk_, inv_, ...) followed by a
// collision-free suffix.
package idgen

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Generator issues identifiers. Implementations must be safe for concurrent use.
type Generator interface {
	NewID(prefix string) string
}

// UUID suffixes identifiers with a random v4 uuid.
type UUID struct{}

func NewUUID() UUID { return UUID{} }

func (UUID) NewID(prefix string) string {
	return prefix + uuid.NewString()
}

// Snowflake suffixes identifiers with a time-ordered snowflake id.
type Snowflake struct {
	node *snowflake.Node
}

func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

func (s *Snowflake) NewID(prefix string) string {
	return prefix + s.node.Generate().String()
}

// Sequence issues prefix_000001, prefix_000002, ... per prefix. Tests use it
// for deterministic identifiers.
type Sequence struct {
	mu       sync.Mutex
	counters map[string]int
}

func NewSequence() *Sequence {
	return &Sequence{counters: map[string]int{}}
}

func (s *Sequence) NewID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[prefix]++
	return fmt.Sprintf("%s%06d", prefix, s.counters[prefix])
}

// FromStrategy resolves the ID_STRATEGY setting.
func FromStrategy(strategy string, node int64) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", "uuid":
		return NewUUID(), nil
	case "snowflake":
		return NewSnowflake(node)
	case "sequence":
		return NewSequence(), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
