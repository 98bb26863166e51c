package port

import (
	"context"

	"parseview/internal/domain"
)

// ParseInput carries the data needed for one vendor parse call.
// The file is read from FilePath so large uploads are streamed rather than held in memory.
type ParseInput struct {
	FilePath    string
	FileName    string
	ContentType string
	Options     domain.ParseOptions
}

// DocumentParser abstracts the external document parsing vendor.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*domain.ParseResult, error)
}
