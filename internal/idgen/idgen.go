// Package idgen provides the id generators used for tables, columns and
// relationships. Generators are injected so that stores stay deterministic
// under test.
package idgen

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generator produces fresh ids. prefix names the kind of entity
// ("table", "col", "rel").
type Generator interface {
	Next(prefix string) string
}

// Counter combines a wall-clock timestamp with a counter that only grows for
// the life of the generator: "table_1718000000000_1".
// It is not safe for concurrent use, matching the single-threaded core.
type Counter struct {
	now func() time.Time
	n   uint64
}

// NewCounter returns a Counter reading the given clock. A nil clock means time.Now.
func NewCounter(now func() time.Time) *Counter {
	if now == nil {
		now = time.Now
	}
	return &Counter{now: now}
}

// Next implements Generator.
func (c *Counter) Next(prefix string) string {
	c.n++
	return fmt.Sprintf("%s_%d_%d", prefix, c.now().UnixMilli(), c.n)
}

// Sequence yields "prefix_1", "prefix_2", ... with one counter shared by all prefixes.
type Sequence struct {
	n int
}

// NewSequence returns a Sequence starting at 1.
func NewSequence() *Sequence { return &Sequence{} }

// Next implements Generator.
func (s *Sequence) Next(prefix string) string {
	s.n++
	return fmt.Sprintf("%s_%d", prefix, s.n)
}

// UUID yields "prefix_<uuid v7>". Ids sort by creation time.
type UUID struct{}

// Next implements Generator.
func (UUID) Next(prefix string) string {
	return prefix + "_" + uuid.Must(uuid.NewV7()).String()
}

// Strategy names a generator in configuration files.
type Strategy string

const (
	StrategyCounter Strategy = "counter"
	StrategyUUID    Strategy = "uuid"
)

// FromStrategy returns the generator for s. Unknown or empty strategies use Counter.
func FromStrategy(s Strategy) Generator {
	if s == StrategyUUID {
		return UUID{}
	}
	return NewCounter(nil)
}
