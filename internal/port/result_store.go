package port

import (
	"context"
	"errors"

	"parseview/internal/domain"
)

// ErrObjectNotFound is returned by ObjectStorage.Download for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// ResultStore holds the current parse result for each session.
// Put replaces any prior result for the same session (last write wins).
// Get returns domain.ErrResultNotFound when the session has no result.
type ResultStore interface {
	Put(ctx context.Context, result *domain.SessionResult) error
	Get(ctx context.Context, sessionID string) (*domain.SessionResult, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}
