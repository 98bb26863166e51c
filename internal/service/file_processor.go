package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"parseview/internal/config"
	"parseview/internal/domain"
	"parseview/internal/metrics"
	"parseview/internal/parser"
	"parseview/internal/port"
)

// ProcessInput is the DTO for a single upload headed to the vendor.
type ProcessInput struct {
	File     io.Reader
	FileName string
	Size     int64
	Options  domain.ParseOptions
}

// FileProcessor validates uploads and relays them to the document parser.
type FileProcessor interface {
	Validate(fileName string, size int64) error
	Process(ctx context.Context, input ProcessInput) (*domain.ParseResult, *domain.DocumentInfo, error)
}

type fileProcessor struct {
	parser  port.DocumentParser
	cfg     *config.UploadConfig
	metrics *metrics.Metrics
}

// NewFileProcessor creates a new FileProcessor implementation.
func NewFileProcessor(
	documentParser port.DocumentParser,
	cfg *config.UploadConfig,
	m *metrics.Metrics,
) FileProcessor {
	return &fileProcessor{
		parser:  documentParser,
		cfg:     cfg,
		metrics: m,
	}
}

// fileTypeOf returns the FileType for a file name's extension.
func fileTypeOf(fileName string) (domain.FileType, string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	ft, ok := domain.AllowedExtensions[ext]
	return ft, ext, ok
}

func (p *fileProcessor) Validate(fileName string, size int64) error {
	if _, _, ok := fileTypeOf(fileName); !ok {
		return fmt.Errorf("%w: %q (supported: %s)", domain.ErrUnsupportedFileType, filepath.Ext(fileName), domain.SupportedExtensionList())
	}
	if size > p.cfg.MaxBytes() {
		return fmt.Errorf("%w: %d bytes (max %d MB)", domain.ErrFileTooLarge, size, p.cfg.MaxFileSizeMB)
	}
	if size < p.cfg.MinFileSizeBytes {
		return fmt.Errorf("%w: %d bytes (min %d bytes)", domain.ErrFileTooSmall, size, p.cfg.MinFileSizeBytes)
	}
	return nil
}

// ValidateOptions rejects OCR modes and output formats the vendor does not accept.
func ValidateOptions(opts domain.ParseOptions) error {
	if opts.OCR != "" && !domain.ValidOCRModes[opts.OCR] {
		return fmt.Errorf("%w: ocr must be 'auto' or 'force', got %q", domain.ErrInvalidOption, opts.OCR)
	}
	for _, f := range opts.OutputFormats {
		if !domain.ValidOutputFormats[f] {
			return fmt.Errorf("%w: unknown output format %q", domain.ErrInvalidOption, f)
		}
	}
	return nil
}

func (p *fileProcessor) Process(ctx context.Context, input ProcessInput) (*domain.ParseResult, *domain.DocumentInfo, error) {
	if err := p.Validate(input.FileName, input.Size); err != nil {
		return nil, nil, err
	}
	if err := ValidateOptions(input.Options); err != nil {
		return nil, nil, err
	}
	fileType, ext, _ := fileTypeOf(input.FileName)
	contentType := domain.AllowedFileTypes[fileType]

	tmp, err := os.CreateTemp(p.cfg.TempDir, "parseview-*."+ext)
	if err != nil {
		return nil, nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn().Err(rmErr).Str("path", tmpPath).Msg("fileProcessor.Process: failed to remove temp file")
		}
	}()

	// The declared size may lie, so the limit is enforced on the bytes actually read.
	written, err := io.Copy(tmp, io.LimitReader(input.File, p.cfg.MaxBytes()+1))
	closeErr := tmp.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("writing temp file: %w", err)
	}
	if closeErr != nil {
		return nil, nil, fmt.Errorf("closing temp file: %w", closeErr)
	}
	if written > p.cfg.MaxBytes() {
		return nil, nil, fmt.Errorf("%w: more than %d MB received", domain.ErrFileTooLarge, p.cfg.MaxFileSizeMB)
	}
	if written < p.cfg.MinFileSizeBytes {
		return nil, nil, fmt.Errorf("%w: %d bytes received (min %d bytes)", domain.ErrFileTooSmall, written, p.cfg.MinFileSizeBytes)
	}

	doc := &domain.DocumentInfo{
		FileName:    input.FileName,
		FileType:    fileType,
		ContentType: contentType,
		Size:        written,
	}
	if fileType == domain.FileTypePDF {
		doc.PageCount = countPDFPages(tmpPath)
	}

	log.Info().
		Str("file", input.FileName).
		Str("content_type", contentType).
		Int64("size", written).
		Int("pages", doc.PageCount).
		Msg("fileProcessor.Process: sending document to vendor")

	start := time.Now()
	result, err := p.parser.Parse(ctx, port.ParseInput{
		FilePath:    tmpPath,
		FileName:    input.FileName,
		ContentType: contentType,
		Options:     input.Options,
	})
	elapsed := time.Since(start)
	if err != nil {
		p.metrics.RecordVendorCall("error", elapsed, 0)
		log.Error().Err(err).Str("file", input.FileName).Dur("elapsed", elapsed).
			Msg("fileProcessor.Process: vendor call failed")
		return nil, nil, err
	}
	p.metrics.RecordVendorCall("success", elapsed, len(result.Elements))

	parser.Enrich(result)
	if doc.PageCount == 0 {
		doc.PageCount = result.PageCount()
	}

	log.Info().
		Str("file", input.FileName).
		Int("elements", len(result.Elements)).
		Int("pages", result.PageCount()).
		Dur("elapsed", elapsed).
		Msg("fileProcessor.Process: document parsed")

	return result, doc, nil
}

// countPDFPages returns the page count of a PDF, or 0 if it cannot be read.
// It only feeds logs and document info, so failures are not errors.
func countPDFPages(path string) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Str("path", path).Msg("fileProcessor.countPDFPages: unreadable pdf")
			pages = 0
		}
	}()
	f, reader, err := pdf.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("fileProcessor.countPDFPages: unreadable pdf")
		return 0
	}
	defer func() { _ = f.Close() }()
	return reader.NumPage()
}
