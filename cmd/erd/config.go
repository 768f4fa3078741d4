package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/idgen"
	"github.com/hlop3z/erdpad/internal/server"
	"github.com/hlop3z/erdpad/pkg/erdpad"
)

// Config represents the erd.yaml configuration file.
type Config struct {
	Diagram    string       `yaml:"diagram"`
	CacheDir   string       `yaml:"cache_dir"`
	Autosave   *bool        `yaml:"autosave"`
	IDStrategy string       `yaml:"id_strategy"`
	References string       `yaml:"references"`
	LogLevel   string       `yaml:"log_level"`
	Layout     LayoutConfig `yaml:"layout"`
	Server     ServerConfig `yaml:"server"`
}

// LayoutConfig overrides the table box metrics. Zero keeps the default.
type LayoutConfig struct {
	TableWidth   float64 `yaml:"table_width"`
	HeaderHeight float64 `yaml:"header_height"`
	RowHeight    float64 `yaml:"row_height"`
}

// ServerConfig configures `erd serve`. Zero values keep the defaults.
type ServerConfig struct {
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	CORSOrigins       []string `yaml:"cors_origins"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults
func loadConfig() (*Config, error) {
	cfg := &Config{
		Diagram:    DefaultDiagramFile,
		CacheDir:   ".",
		IDStrategy: string(idgen.StrategyCounter),
		References: "name",
		LogLevel:   "warn",
	}

	// Load config file if it exists
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
			return nil, alerr.Wrap(alerr.ErrConfigInvalid, err, "failed to parse config file").
				WithFile(configFile)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, alerr.Wrap(alerr.ErrConfigInvalid, err, "failed to read config file").
			WithFile(configFile)
	}

	// Override with env vars
	if v := os.Getenv("ERD_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("ERD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ERD_ID_STRATEGY"); v != "" {
		cfg.IDStrategy = v
	}

	// Override with CLI flags (highest priority)
	if diagramFile != "" {
		cfg.Diagram = diagramFile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if idStrategy != "" {
		cfg.IDStrategy = idStrategy
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch idgen.Strategy(c.IDStrategy) {
	case idgen.StrategyCounter, idgen.StrategyUUID:
	default:
		return alerr.Newf(alerr.ErrConfigInvalid, "unknown id strategy %q", c.IDStrategy).
			WithHelp("use counter or uuid")
	}
	switch c.References {
	case "name", "id":
	default:
		return alerr.Newf(alerr.ErrConfigInvalid, "unknown reference style %q", c.References).
			WithHelp("use name or id")
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return alerr.Newf(alerr.ErrConfigInvalid, "unknown log level %q", c.LogLevel).
			WithHelp("use debug, info, warn or error")
	}
	return nil
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

// DiagramPath returns the diagram file with the .uml.json suffix.
func (c *Config) DiagramPath() string {
	return erdpad.DiagramFileName(c.Diagram)
}

// AutosaveEnabled reports whether changes are mirrored to the cache.
func (c *Config) AutosaveEnabled() bool {
	return c.Autosave == nil || *c.Autosave
}

// LayoutMetrics returns the configured box metrics.
func (c *Config) LayoutMetrics() erdpad.Layout {
	l := erdpad.DefaultLayout()
	if c.Layout.TableWidth > 0 {
		l.TableWidth = c.Layout.TableWidth
	}
	if c.Layout.HeaderHeight > 0 {
		l.HeaderHeight = c.Layout.HeaderHeight
	}
	if c.Layout.RowHeight > 0 {
		l.RowHeight = c.Layout.RowHeight
	}
	return l
}

// Resolver returns the foreign-key resolver named by References.
func (c *Config) Resolver() erdpad.Resolver {
	if c.References == "id" {
		return erdpad.ByID
	}
	return erdpad.ByName
}

// DesignerOptions returns the Designer options the config implies.
func (c *Config) DesignerOptions(logger *slog.Logger) []erdpad.Option {
	return []erdpad.Option{
		erdpad.WithIDGenerator(idgen.FromStrategy(idgen.Strategy(c.IDStrategy))),
		erdpad.WithResolver(c.Resolver()),
		erdpad.WithLayout(c.LayoutMetrics()),
		erdpad.WithLogger(logger),
	}
}

// HTTPConfig returns the HTTP host configuration.
func (c *Config) HTTPConfig() server.Config {
	sc := server.DefaultConfig()
	if c.Server.Host != "" {
		sc.Host = c.Server.Host
	}
	if c.Server.Port != 0 {
		sc.Port = c.Server.Port
	}
	if len(c.Server.CORSOrigins) > 0 {
		sc.CORSOrigins = c.Server.CORSOrigins
	}
	if c.Server.RequestsPerMinute != 0 {
		sc.RequestsPerMinute = c.Server.RequestsPerMinute
	}
	return sc
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

// newLogger returns a text logger on w at the configured level.
func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, _ := parseLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// defaultConfigYAML is written by `erd init`.
const defaultConfigYAML = `# erd configuration
diagram: %s

# Directory holding the .erd autosave cache.
cache_dir: .
autosave: true

# counter: table_<unixMillis>_<n>, uuid: table_<uuid v7>
id_strategy: counter

# Foreign-key references as Table.Column names (name) or ids (id).
references: name

log_level: warn

layout:
  table_width: 150
  header_height: 40
  row_height: 25

server:
  host: 127.0.0.1
  port: 8080
  cors_origins: ["*"]
  requests_per_minute: 600
`
