// Package toml persists verified senders to a TOML file so they survive
// restarts.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

const (
	stateFileMode   = 0o600
	stateDirMode    = 0o700
	tempFilePattern = ".verified-*.toml.tmp"
)

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.VerifiedStore = (*VerifiedStore)(nil)

// VerifiedStore keeps the whole file in memory and rewrites it atomically on
// every change.
type VerifiedStore struct {
	path     string
	mu       *sync.RWMutex
	verified map[domain.Sender]time.Time
}

func NewVerifiedStore(path string) (*VerifiedStore, error) {
	if path == "" {
		return nil, errors.New("verified senders path is empty")
	}
	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	s := &VerifiedStore{path: path, mu: lockForPath(path)}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return nil, err
	}
	s.verified = fromSchema(file)

	return s, nil
}

func (s *VerifiedStore) Path() string {
	return s.path
}

func (s *VerifiedStore) Get(ctx context.Context, sender domain.Sender) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.verified[sender]
	return at, ok, nil
}

func (s *VerifiedStore) Put(ctx context.Context, sender domain.Sender, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.verified[sender]
	s.verified[sender] = at.UTC()

	if err := s.writeSchema(toSchema(s.verified)); err != nil {
		if existed {
			s.verified[sender] = previous
		} else {
			delete(s.verified, sender)
		}
		return err
	}

	return nil
}

func (s *VerifiedStore) Remove(ctx context.Context, sender domain.Sender) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.verified[sender]
	if !existed {
		return nil
	}
	delete(s.verified, sender)

	if err := s.writeSchema(toSchema(s.verified)); err != nil {
		s.verified[sender] = previous
		return err
	}

	return nil
}

func (s *VerifiedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.verified)
}

func (s *VerifiedStore) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read verified senders file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode verified senders file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (s *VerifiedStore) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(s.path), stateDirMode); err != nil {
		return fmt.Errorf("create verified senders directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode verified senders file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp verified senders file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp verified senders file: %w", err)
	}

	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp verified senders file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp verified senders file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace verified senders file: %w", err)
	}

	cleanup = false
	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve verified senders path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(verified map[domain.Sender]time.Time) fileSchema {
	entries := make([]verifiedSchema, 0, len(verified))
	for sender, at := range verified {
		entries = append(entries, verifiedSchema{
			Number:     sender.String(),
			VerifiedAt: formatTime(at),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Number < entries[j].Number })

	return fileSchema{Version: currentSchemaVersion, Verified: entries}
}

func fromSchema(file fileSchema) map[domain.Sender]time.Time {
	verified := make(map[domain.Sender]time.Time, len(file.Verified))
	for _, entry := range file.Verified {
		sender := domain.CanonicalSender(entry.Number)
		if sender == "" {
			continue
		}
		verified[sender] = parseTime(entry.VerifiedAt)
	}
	return verified
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
