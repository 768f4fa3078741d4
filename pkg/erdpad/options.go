package erdpad

import (
	"log/slog"
	"time"
)

// Config holds all configuration options for a Designer.
type Config struct {
	// IDGenerator mints ids for new tables, columns and relationships.
	// Default: CounterIDs()
	IDGenerator IDGenerator

	// Resolver matches foreign-key references to target columns.
	// Default: ByName
	Resolver Resolver

	// Logger receives diagnostics such as an unreadable initial document.
	// Default: slog.Default()
	Logger *slog.Logger

	// Layout sets the table box metrics used for hit-testing and connectors.
	// Default: DefaultLayout()
	Layout Layout

	// Transform maps pointer positions to canvas coordinates.
	// Default: identity
	Transform Transform

	// BatchPositions makes drags notify once on release instead of on
	// every pointer move.
	BatchPositions bool

	// ScriptTimeout bounds RunScript.
	// Default: 5s
	ScriptTimeout time.Duration
}

// Option is a functional option for configuring a Designer.
type Option func(*Config)

// WithIDGenerator sets how ids are minted.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Config) {
		c.IDGenerator = g
	}
}

// WithResolver sets how foreign-key references are resolved.
//
// Example:
//
//	d := erdpad.New(doc, save, erdpad.WithResolver(erdpad.ByID))
func WithResolver(r Resolver) Option {
	return func(c *Config) {
		c.Resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithLayout sets the table box metrics.
func WithLayout(l Layout) Option {
	return func(c *Config) {
		c.Layout = l
	}
}

// WithTransform sets the screen-to-canvas transform for pointer events.
func WithTransform(t Transform) Option {
	return func(c *Config) {
		c.Transform = t
	}
}

// WithPositionBatching coalesces drag notifications until pointer-up.
func WithPositionBatching() Option {
	return func(c *Config) {
		c.BatchPositions = true
	}
}

// WithScriptTimeout bounds how long RunScript may execute.
func WithScriptTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ScriptTimeout = d
	}
}
