package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/cache"
	"github.com/hlop3z/erdpad/internal/codec"
	"github.com/hlop3z/erdpad/pkg/erdpad"
)

// session is one command's view of the diagram file. The Designer's change
// notifications are collected and the last document is written on Close.
type session struct {
	cfg      *Config
	file     string
	logger   *slog.Logger
	cache    *cache.Cache
	designer *erdpad.Designer

	doc     string
	changed bool
	dryRun  bool
}

// openSession loads the configured diagram. A missing file is an error when
// mustExist is set and an empty diagram otherwise. An existing file must be
// a valid document.
func openSession(cmd *cobra.Command, mustExist bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:    cfg,
		file:   cfg.DiagramPath(),
		logger: newLogger(cmd.ErrOrStderr(), cfg.LogLevel),
	}

	initial, err := readDiagram(s.file, mustExist)
	if err != nil {
		return nil, err
	}

	if cfg.AutosaveEnabled() {
		c, err := cache.Open(cfg.CacheDir)
		if err != nil {
			s.logger.Warn("autosave disabled", "error", err)
		} else {
			s.cache = c
		}
	}

	s.designer = erdpad.New(initial, s.record, cfg.DesignerOptions(s.logger)...)
	return s, nil
}

// readDiagram returns the file's contents after a strict check.
func readDiagram(file string, mustExist bool) (string, error) {
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		if mustExist {
			return "", alerr.New(alerr.ErrDocumentRead, "diagram file does not exist").
				WithFile(file).
				WithHelp("create it with `erd new` or pass --file")
		}
		return "", nil
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrDocumentRead, err, "failed to read diagram").WithFile(file)
	}
	if _, err := codec.Import(data); err != nil {
		return "", withFile(err, file)
	}
	return string(data), nil
}

func withFile(err error, file string) error {
	var e *alerr.Error
	if errors.As(err, &e) {
		e.WithFile(file)
	}
	return err
}

func (s *session) record(doc string) {
	s.doc = doc
	s.changed = true
}

// Close writes the last notified document, autosaves it, and releases the
// cache.
func (s *session) Close() error {
	s.designer.Close()
	if s.cache != nil {
		defer s.cache.Close()
	}
	if !s.changed || s.dryRun {
		return nil
	}
	if err := writeDiagram(s.file, s.doc); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Save(cache.Key(s.file), s.designer.Graph()); err != nil {
			s.logger.Warn("autosave failed", "file", s.file, "error", err)
		}
	}
	s.logger.Debug("diagram written", "file", s.file)
	return nil
}

// writeDiagram writes doc to file, creating parent directories.
func writeDiagram(file, doc string) error {
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, DirPerm); err != nil {
			return alerr.Wrap(alerr.ErrDocumentWrite, err, "failed to create directory").WithFile(file)
		}
	}
	if err := os.WriteFile(file, []byte(doc), FilePerm); err != nil {
		return alerr.Wrap(alerr.ErrDocumentWrite, err, "failed to write diagram").WithFile(file)
	}
	return nil
}

// withSession runs fn against the diagram and writes it back when fn
// succeeds. On error nothing is written.
func withSession(cmd *cobra.Command, mustExist bool, fn func(s *session) error) error {
	s, err := openSession(cmd, mustExist)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		s.dryRun = true
		s.Close()
		return err
	}
	return s.Close()
}
