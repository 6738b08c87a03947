package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/natefinch/atomic"
	"github.com/prometheus/client_golang/prometheus"
)

const storeName = "config_store"

// backupTimeFormat is the UTC timestamp appended to backup files, to the second.
const backupTimeFormat = "20060102150405"

var (
	// ErrStorageCorrupt is logged when the configuration file exists but cannot be read or parsed.
	ErrStorageCorrupt = errors.New("configuration file is corrupt")

	// ErrStorageWriteFailed is logged when the configuration could not be written atomically.
	ErrStorageWriteFailed = errors.New("configuration write failed")
)

// Store owns the configuration document and its file on disk.
type Store struct {
	// l is the logger.
	l *slog.Logger

	// path is the configuration file.
	path string

	// maxBackups is the number of backup files that are kept. Zero keeps every backup.
	maxBackups int

	// now returns the current time. Replaced in tests.
	now func() time.Time

	// mu guards doc.
	mu sync.Mutex

	// doc is the live document.
	doc entities.ConfigDocument

	// writeSlot allows one save at a time. Callers queue on it.
	writeSlot chan struct{}
}

// Option configures a Store.
type Option func(s *Store)

// WithMaxBackups sets how many backup files are kept.
func WithMaxBackups(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxBackups = n
		}
	}
}

// WithClock sets the function used to timestamp backups.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open creates a store for the file at path and loads the document from it.
func Open(l *slog.Logger, path string, opts ...Option) *Store {
	s := &Store{
		l:         l.With(slog.String(logging.KeyDal, storeName), slog.String("path", path)),
		path:      path,
		now:       time.Now,
		writeSlot: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.doc = s.Load()
	return s
}

// Path returns the configuration file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document from disk. A missing or unreadable file gives an empty document so the bot can still start
// with defaults.
func (s *Store) Load() entities.ConfigDocument {
	loadsTotal.Inc()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.l.Info("No configuration file found, starting with an empty configuration")
		return make(entities.ConfigDocument)
	} else if err != nil {
		s.l.Error("Error opening configuration file, starting with an empty configuration",
			slog.String(logging.KeyError, fmt.Errorf("%w: %w", ErrStorageCorrupt, err).Error()))
		loadFailures.Inc()
		return make(entities.ConfigDocument)
	}
	defer f.Close()

	doc, err := decode(f)
	if err != nil {
		s.l.Error("Error parsing configuration file, starting with an empty configuration",
			slog.String(logging.KeyError, fmt.Errorf("%w: %w", ErrStorageCorrupt, err).Error()))
		loadFailures.Inc()
		return make(entities.ConfigDocument)
	}

	s.l.Debug("Loaded configuration", slog.Int("guilds", len(doc)))
	return doc
}

// Do runs fn with exclusive access to the live document. Every read-modify-write of the document happens inside Do;
// fn must not perform I/O or call back into the store.
func (s *Store) Do(fn func(doc entities.ConfigDocument)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// Save writes the live document to disk. Failures are logged and never returned: the in-memory document is already
// correct and losing one save must not break ticket handling.
func (s *Store) Save(ctx context.Context) {
	select {
	case s.writeSlot <- struct{}{}:
	case <-ctx.Done():
		s.l.Warn("Save abandoned while waiting for the write lock", slog.String(logging.KeyError, ctx.Err().Error()))
		savesTotal.WithLabelValues(outcomeAbandoned).Inc()
		return
	}
	defer func() { <-s.writeSlot }()

	t := prometheus.NewTimer(saveLatency)
	defer t.ObserveDuration()

	s.mu.Lock()
	data, err := encode(s.doc)
	s.mu.Unlock()
	if err != nil {
		s.l.Error("Error encoding configuration", slog.String(logging.KeyError, err.Error()))
		savesTotal.WithLabelValues(outcomeFailed).Inc()
		return
	}

	s.backup()

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		s.l.Error("Atomic configuration write failed, falling back to a direct write",
			slog.String(logging.KeyError, fmt.Errorf("%w: %w", ErrStorageWriteFailed, err).Error()))

		if err := os.WriteFile(s.path, data, 0o644); err != nil {
			s.l.Error("Direct configuration write failed",
				slog.String(logging.KeyError, fmt.Errorf("%w: %w", ErrStorageWriteFailed, err).Error()))
			savesTotal.WithLabelValues(outcomeFailed).Inc()
			return
		}
		savesTotal.WithLabelValues(outcomeFallback).Inc()
		return
	}

	savesTotal.WithLabelValues(outcomeAtomic).Inc()
	s.l.Debug("Configuration saved")
}

// Check reports whether the configuration directory can be written to.
func (s *Store) Check(_ context.Context) error {
	f, err := os.CreateTemp(s.dir(), ".healthcheck-")
	if err != nil {
		return fmt.Errorf("configuration directory is not writable: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing health check file: %w", err)
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("error removing health check file: %w", err)
	}
	return nil
}

// Backups returns the backup files of the configuration, oldest first.
func (s *Store) Backups() ([]string, error) {
	matches, err := filepath.Glob(s.path + ".bak-*")
	if err != nil {
		return nil, fmt.Errorf("error listing backups: %w", err)
	}
	// The timestamp format sorts lexically.
	sort.Strings(matches)
	return matches, nil
}

func (s *Store) dir() string {
	dir := filepath.Dir(s.path)
	if dir == "" {
		return "."
	}
	return dir
}

// backup copies the current file to a timestamped backup and prunes old backups. Failures are logged only.
func (s *Store) backup() {
	src, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return
	} else if err != nil {
		s.l.Error("Error opening configuration for backup", slog.String(logging.KeyError, err.Error()))
		backupFailures.Inc()
		return
	}
	defer src.Close()

	name := fmt.Sprintf("%s.bak-%s", s.path, s.now().UTC().Format(backupTimeFormat))
	if err := copyFile(src, name); err != nil {
		s.l.Error("Error creating configuration backup", slog.String("backup", name), slog.String(logging.KeyError, err.Error()))
		backupFailures.Inc()
		return
	}
	s.l.Debug("Configuration backup created", slog.String("backup", name))

	s.pruneBackups()
}

func (s *Store) pruneBackups() {
	if s.maxBackups == 0 {
		return
	}

	backups, err := s.Backups()
	if err != nil {
		s.l.Error("Error listing configuration backups", slog.String(logging.KeyError, err.Error()))
		return
	}

	for len(backups) > s.maxBackups {
		if err := os.Remove(backups[0]); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.l.Error("Error removing old configuration backup", slog.String("backup", backups[0]), slog.String(logging.KeyError, err.Error()))
			return
		}
		backups = backups[1:]
	}
}

func copyFile(src *os.File, name string) error {
	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("error reading file info: %w", err)
	}

	dst, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("error copying to backup file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("error closing backup file: %w", err)
	}
	return os.Chtimes(name, info.ModTime(), info.ModTime())
}

func decode(r io.Reader) (entities.ConfigDocument, error) {
	doc := make(entities.ConfigDocument)
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	if doc == nil {
		// A file containing only null.
		doc = make(entities.ConfigDocument)
	}
	doc.Normalize()
	return doc, nil
}

func encode(doc entities.ConfigDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding configuration: %w", err)
	}
	return append(data, '\n'), nil
}
