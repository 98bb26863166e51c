// Package disk keeps one JSON file per session under a directory.
package disk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"parseview/internal/domain"
	"parseview/internal/port"
)

// Store writes each session result to <dir>/<session-id>.json. Writes go to a
// temp file in the same directory and are renamed into place.
type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

var _ port.ResultStore = (*Store)(nil)

// New creates the directory if needed and returns a disk-backed result store.
func New(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating result dir: %w", err)
	}
	return &Store{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (s *Store) path(sessionID string) (string, error) {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, sessionID+".json"), nil
}

func (s *Store) Put(_ context.Context, result *domain.SessionResult) error {
	path, err := s.path(result.SessionID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("diskStore.Put: encoding result: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+result.SessionID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("diskStore.Put: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("diskStore.Put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("diskStore.Put: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("diskStore.Put: %w", err)
	}
	return nil
}

func (s *Store) Get(_ context.Context, sessionID string) (*domain.SessionResult, error) {
	path, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("diskStore.Get: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(info.ModTime()) >= s.ttl {
		_ = os.Remove(path)
		return nil, domain.ErrResultNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("diskStore.Get: %w", err)
	}
	var result domain.SessionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("diskStore.Get: decoding result: %w", err)
	}
	return &result, nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("diskStore.Delete: %w", err)
	}
	return nil
}

// Ping checks that the directory is still writable.
func (s *Store) Ping(context.Context) error {
	f, err := os.CreateTemp(s.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("diskStore.Ping: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
