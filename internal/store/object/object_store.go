// Package object keeps session results in an object storage bucket.
package object

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"parseview/internal/domain"
	"parseview/internal/port"
)

// Store implements port.ResultStore on top of port.ObjectStorage.
// Each session has a single object at sessions/<id>/result.json. Expiry is left
// to bucket lifecycle rules.
type Store struct {
	storage port.ObjectStorage
	bucket  string
}

var _ port.ResultStore = (*Store)(nil)

// New creates an object-storage-backed result store.
func New(storage port.ObjectStorage, bucket string) *Store {
	return &Store{storage: storage, bucket: bucket}
}

// Key returns the object key for a session.
func Key(sessionID string) string {
	return fmt.Sprintf("sessions/%s/result.json", sessionID)
}

func (s *Store) Put(ctx context.Context, result *domain.SessionResult) error {
	if err := domain.ValidateSessionID(result.SessionID); err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("objectStore.Put: encoding result: %w", err)
	}
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         Key(result.SessionID),
		Body:        bytes.NewReader(data),
		ContentType: "application/json",
		Size:        int64(len(data)),
	})
	if err != nil {
		return fmt.Errorf("objectStore.Put: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*domain.SessionResult, error) {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	data, err := s.storage.Download(ctx, s.bucket, Key(sessionID))
	if err != nil {
		if errors.Is(err, port.ErrObjectNotFound) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("objectStore.Get: %w", err)
	}
	var result domain.SessionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("objectStore.Get: decoding result: %w", err)
	}
	return &result, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, s.bucket, Key(sessionID)); err != nil {
		return fmt.Errorf("objectStore.Delete: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.storage.HeadBucket(ctx, s.bucket)
}
