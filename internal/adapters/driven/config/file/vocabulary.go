package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// Ensure VocabularyFile implements the interface.
var _ driven.VocabularyProvider = (*VocabularyFile)(nil)

// VocabularyFile serves a keyword vocabulary read from a YAML file.
// Lists missing from the file fall back to the built-in defaults.
// A missing file yields the defaults.
type VocabularyFile struct {
	mu    sync.RWMutex
	path  string
	vocab domain.Vocabulary
	log   *slog.Logger
}

// NewVocabularyFile loads the vocabulary at path.
// If path is empty, defaults to ~/.flowwatch/vocabulary.yaml.
func NewVocabularyFile(path string) (*VocabularyFile, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "vocabulary.yaml")
	}

	v := &VocabularyFile{
		path:  path,
		vocab: domain.DefaultVocabulary(),
		log:   logger.Component("vocabulary"),
	}
	if err := v.Reload(); err != nil {
		return nil, err
	}
	return v, nil
}

// Vocabulary returns the current vocabulary.
func (v *VocabularyFile) Vocabulary() domain.Vocabulary {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.vocab
}

// Path returns the vocabulary file path.
func (v *VocabularyFile) Path() string {
	return v.path
}

// Reload re-reads the file. On a parse error the previous vocabulary is kept.
func (v *VocabularyFile) Reload() error {
	data, err := os.ReadFile(v.path)
	if errors.Is(err, os.ErrNotExist) {
		v.set(domain.DefaultVocabulary())
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading vocabulary: %w", err)
	}

	var loaded domain.Vocabulary
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", v.path, err)
	}
	v.set(loaded.WithDefaults())
	return nil
}

func (v *VocabularyFile) set(vocab domain.Vocabulary) {
	v.mu.Lock()
	v.vocab = vocab
	v.mu.Unlock()
}

// Watch reloads the vocabulary whenever the file changes, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func (v *VocabularyFile) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(v.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating vocabulary directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			v.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			v.log.Warn("watch error", "error", err)
		}
	}
}

// handleEvent reloads on changes to the vocabulary file and reports
// whether a reload happened.
func (v *VocabularyFile) handleEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(v.path) {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if err := v.Reload(); err != nil {
		v.log.Warn("vocabulary reload failed", "path", v.path, "error", err)
		return false
	}
	v.log.Info("vocabulary reloaded", "path", v.path)
	return true
}
