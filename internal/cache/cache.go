package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/drift"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// CacheDir is the default directory name for the cache (gitignored).
	CacheDir = ".erd"
	// CacheFile is the SQLite database file name.
	CacheFile = "cache.db"
)

// Cache keeps the latest autosave of each diagram file.
// One entry per file: saving replaces the previous entry.
type Cache struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Entry is one autosaved diagram.
type Entry struct {
	File          string
	Root          string // Merkle root of Graph
	Tables        int
	Relationships int
	SavedAt       time.Time
	Graph         diagram.Graph
}

// Open opens or creates the cache database under projectRoot/.erd.
// If the directory or database does not exist, they are created.
func Open(projectRoot string) (*Cache, error) {
	dir := filepath.Join(projectRoot, CacheDir)
	cachePath := filepath.Join(dir, CacheFile)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to create cache directory").
			With("path", dir)
	}

	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to open cache database").
			With("path", cachePath)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to connect to cache database").
			With("path", cachePath)
	}

	cache := &Cache{
		db:   db,
		path: cachePath,
	}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return cache, nil
}

// Close closes the cache database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the path to the cache database file.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// initSchema creates the cache database tables if they don't exist.
func (c *Cache) initSchema() error {
	schema := `
		-- Latest autosave per diagram file
		CREATE TABLE IF NOT EXISTS autosaves (
			file           TEXT PRIMARY KEY,
			root_hash      TEXT NOT NULL,
			payload        BLOB NOT NULL,
			tables         INTEGER NOT NULL,
			relationships  INTEGER NOT NULL,
			saved_at       TEXT NOT NULL
		);

		-- Cache metadata (version, etc.)
		CREATE TABLE IF NOT EXISTS cache_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- Set cache version
		INSERT OR REPLACE INTO cache_meta (key, value) VALUES ('version', '1');
	`

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(schema); err != nil {
		return alerr.Wrap(alerr.ErrCacheInit, err, "failed to initialize cache schema")
	}

	return nil
}

// -----------------------------------------------------------------------------
// Autosave Operations
// -----------------------------------------------------------------------------

// Save stores g as the autosave for file, replacing any earlier one.
func (c *Cache) Save(file string, g diagram.Graph) error {
	data, err := SerializeGraph(g)
	if err != nil {
		return err
	}
	root, err := drift.Fingerprint(g)
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to fingerprint diagram").WithFile(file)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO autosaves (file, root_hash, payload, tables, relationships, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		file, root, data, len(g.Tables), len(g.Relationships), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to write autosave").WithFile(file)
	}

	return nil
}

// Load returns the autosave for file. Returns nil if not found.
func (c *Cache) Load(file string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		entry   = &Entry{File: file}
		payload []byte
		savedAt string
	)
	err := c.db.QueryRow(
		"SELECT root_hash, payload, tables, relationships, saved_at FROM autosaves WHERE file = ?",
		file,
	).Scan(&entry.Root, &payload, &entry.Tables, &entry.Relationships, &savedAt)

	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to read autosave").WithFile(file)
	}

	entry.Graph, err = DeserializeGraph(payload)
	if err != nil {
		return nil, err
	}
	entry.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
	return entry, nil
}

// Root returns just the stored fingerprint for file.
// Returns empty string if not found.
func (c *Cache) Root(file string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var root string
	err := c.db.QueryRow("SELECT root_hash FROM autosaves WHERE file = ?", file).Scan(&root)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrCacheRead, err, "failed to read autosave hash").WithFile(file)
	}
	return root, nil
}

// Differs reports whether the autosave for file holds something other than
// g. It is false when there is no autosave.
func (c *Cache) Differs(file string, g diagram.Graph) (bool, error) {
	stored, err := c.Root(file)
	if err != nil || stored == "" {
		return false, err
	}
	current, err := drift.Fingerprint(g)
	if err != nil {
		return false, alerr.Wrap(alerr.ErrCacheRead, err, "failed to fingerprint diagram").WithFile(file)
	}
	return stored != current, nil
}

// Delete removes the autosave for file.
func (c *Cache) Delete(file string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("DELETE FROM autosaves WHERE file = ?", file); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to delete autosave").WithFile(file)
	}
	return nil
}

// List returns every autosave without its diagram, newest first.
func (c *Cache) List() ([]*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(
		"SELECT file, root_hash, tables, relationships, saved_at FROM autosaves ORDER BY saved_at DESC, file")
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to list autosaves")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var savedAt string
		if err := rows.Scan(&e.File, &e.Root, &e.Tables, &e.Relationships, &savedAt); err != nil {
			return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to scan autosave")
		}
		e.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// -----------------------------------------------------------------------------
// Cache Management Operations
// -----------------------------------------------------------------------------

// Clear removes all autosaves.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("DELETE FROM autosaves"); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to clear cache")
	}
	return nil
}

// GetCacheVersion returns the cache schema version.
func (c *Cache) GetCacheVersion() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var version string
	err := c.db.QueryRow("SELECT value FROM cache_meta WHERE key = 'version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrCacheRead, err, "failed to read cache version")
	}
	return version, nil
}

// Stats returns cache statistics.
type Stats struct {
	Autosaves    int
	DatabaseSize int64
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &Stats{}
	if err := c.db.QueryRow("SELECT COUNT(*) FROM autosaves").Scan(&stats.Autosaves); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to count autosaves")
	}

	if fi, err := os.Stat(c.path); err == nil {
		stats.DatabaseSize = fi.Size()
	}

	return stats, nil
}

// Vacuum compacts the database file.
func (c *Cache) Vacuum() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("VACUUM"); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to vacuum cache database")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// Exists checks if a cache database exists for the project.
func Exists(projectRoot string) bool {
	_, err := os.Stat(filepath.Join(projectRoot, CacheDir, CacheFile))
	return err == nil
}

// Remove deletes the entire cache directory.
func Remove(projectRoot string) error {
	dir := filepath.Join(projectRoot, CacheDir)
	if err := os.RemoveAll(dir); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to remove cache directory").
			With("path", dir)
	}
	return nil
}

// Key normalizes a diagram file path into a cache key.
func Key(file string) string {
	if abs, err := filepath.Abs(file); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(file)
}
