// Package file extends the allow-list with numbers read from a TOML file
// and follows changes to that file.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

const (
	currentSchemaVersion = 1
	defaultDebounce      = 250 * time.Millisecond
)

var _ ports.AllowListSource = (*Source)(nil)

type fileSchema struct {
	Version int      `toml:"version"`
	Numbers []string `toml:"numbers"`
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported allow-list schema version %d (current %d)", s.Version, currentSchemaVersion)
	}
	return nil
}

// Source serves base merged with the file's numbers. Each reload swaps in a
// whole new list, so readers never see a partial update.
type Source struct {
	path     string
	base     domain.AllowList
	current  atomic.Pointer[domain.AllowList]
	debounce time.Duration
	logger   *zap.Logger
}

func New(path string, base domain.AllowList, logger *zap.Logger) (*Source, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve allow-list path: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Source{path: filepath.Clean(absPath), base: base, debounce: defaultDebounce, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) AllowList(ctx context.Context) (domain.AllowList, error) {
	if err := ctx.Err(); err != nil {
		return domain.AllowList{}, err
	}
	return *s.current.Load(), nil
}

// Reload reads the file again. On error the previous list stays in place.
func (s *Source) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read allow-list file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode allow-list file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return err
	}

	merged := s.base.Union(domain.NewAllowList(file.Numbers...))
	s.current.Store(&merged)
	return nil
}

// Watch reloads the file after it changes until ctx ends. The parent
// directory is watched so that editors replacing the file are seen too.
func (s *Source) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create allow-list watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch allow-list directory: %w", err)
	}

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			timer.Reset(s.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("allow-list watcher error", zap.Error(err))
		case <-timer.C:
			if err := s.Reload(); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					s.logger.Debug("allow-list file missing, keeping previous list", zap.String("path", s.path))
					continue
				}
				s.logger.Warn("allow-list reload failed, keeping previous list", zap.String("path", s.path), zap.Error(err))
				continue
			}
			list := s.current.Load()
			s.logger.Info("allow-list reloaded", zap.String("path", s.path), zap.Int("numbers", list.Len()))
		}
	}
}
