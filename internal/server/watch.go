package server

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/codec"
	"github.com/hlop3z/erdpad/internal/drift"
)

// Watch reloads the diagram when another program changes the backing file.
// It watches the file's directory so editors that save by rename are seen.
// Writes made by the server itself are recognised by fingerprint and
// ignored. Watch returns when ctx is cancelled; it returns nil at once for
// an in-memory diagram.
func (s *Server) Watch(ctx context.Context) error {
	if s.file == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return alerr.Wrap(alerr.ErrWatch, err, "failed to start file watcher")
	}
	defer watcher.Close()

	dir := filepath.Dir(s.file)
	if err := watcher.Add(dir); err != nil {
		return alerr.Wrap(alerr.ErrWatch, err, "failed to watch directory").With("dir", dir)
	}
	s.logger.Info("watching diagram file", "file", s.file)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("ignoring external edit", "file", s.file, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Reload re-reads the backing file and replaces the diagram with it. A file
// matching the current diagram is a no-op, so the server's own writes do not
// loop. An invalid file leaves the diagram untouched.
func (s *Server) Reload() error {
	if s.file == "" {
		return nil
	}
	data, err := os.ReadFile(s.file)
	if err != nil {
		return alerr.Wrap(alerr.ErrDocumentRead, err, "failed to read diagram").WithFile(s.file)
	}
	g, err := codec.Import(data)
	if err != nil {
		return err
	}
	incoming, err := drift.Fingerprint(g)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.designer.Fingerprint()
	if err != nil {
		return err
	}
	if incoming == current {
		s.logger.Debug("diagram file unchanged", "file", s.file)
		return nil
	}

	s.logger.Info("diagram file changed on disk, reloading", "file", s.file)
	return s.designer.LoadDocument(string(data))
}
