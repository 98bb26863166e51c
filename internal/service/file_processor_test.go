package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parseview/internal/config"
	"parseview/internal/domain"
	"parseview/internal/metrics"
	"parseview/internal/port"
	"parseview/internal/service"
	"parseview/mocks"
)

func testUploadConfig(t *testing.T) *config.UploadConfig {
	return &config.UploadConfig{
		MaxFileSizeMB:    1,
		MinFileSizeBytes: 100,
		TempDir:          t.TempDir(),
	}
}

// pdfContent returns fake PDF bytes comfortably above the minimum size.
func pdfContent() []byte {
	return []byte("%PDF-1.4\n" + strings.Repeat("test content that is not a real pdf body ", 5))
}

func sampleResult() *domain.ParseResult {
	return &domain.ParseResult{
		API:   "2.0",
		Model: "document-parse",
		Elements: []domain.Element{
			{ID: 0, Order: 0, Category: "heading1", Page: 1, Content: domain.Content{HTML: "<h1>Title</h1>"},
				BoundingBox: domain.BoundingBox{PageIndex: 0, X: 0.1, Y: 0.1, Width: 0.5, Height: 0.05}},
			{ID: 1, Order: 1, Category: "paragraph", Page: 2, Content: domain.Content{Text: "Body"},
				BoundingBox: domain.BoundingBox{PageIndex: 1, X: 0.1, Y: 0.2, Width: 0.8, Height: 0.1}},
		},
	}
}

func TestFileProcessor_Validate(t *testing.T) {
	proc := service.NewFileProcessor(new(mocks.MockDocumentParser), testUploadConfig(t), metrics.New())

	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr error
	}{
		{"pdf ok", "report.pdf", 2048, nil},
		{"upper-case extension ok", "SCAN.JPEG", 2048, nil},
		{"hwp ok", "gov.hwp", 2048, nil},
		{"unsupported extension", "notes.txt", 2048, domain.ErrUnsupportedFileType},
		{"no extension", "README", 2048, domain.ErrUnsupportedFileType},
		{"too large", "big.pdf", 2 * 1024 * 1024, domain.ErrFileTooLarge},
		{"too small", "tiny.pdf", 99, domain.ErrFileTooSmall},
		{"exact minimum", "min.pdf", 100, nil},
		{"exact maximum", "max.pdf", 1024 * 1024, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := proc.Validate(tt.file, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestFileProcessor_Process_UnsupportedTypeNeverCallsVendor(t *testing.T) {
	parserMock := new(mocks.MockDocumentParser)
	cfg := testUploadConfig(t)
	proc := service.NewFileProcessor(parserMock, cfg, metrics.New())

	result, doc, err := proc.Process(context.Background(), service.ProcessInput{
		File:     bytes.NewReader(pdfContent()),
		FileName: "malware.exe",
		Size:     int64(len(pdfContent())),
	})

	assert.Nil(t, result)
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Contains(t, err.Error(), "pdf")
	parserMock.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)

	entries, _ := os.ReadDir(cfg.TempDir)
	assert.Empty(t, entries)
}

func TestFileProcessor_Process_InvalidOption(t *testing.T) {
	parserMock := new(mocks.MockDocumentParser)
	proc := service.NewFileProcessor(parserMock, testUploadConfig(t), metrics.New())

	_, _, err := proc.Process(context.Background(), service.ProcessInput{
		File:     bytes.NewReader(pdfContent()),
		FileName: "report.pdf",
		Size:     int64(len(pdfContent())),
		Options:  domain.ParseOptions{OCR: "always"},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidOption)
	parserMock.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestFileProcessor_Process_DeclaredSizeLies(t *testing.T) {
	parserMock := new(mocks.MockDocumentParser)
	proc := service.NewFileProcessor(parserMock, testUploadConfig(t), metrics.New())

	_, _, err := proc.Process(context.Background(), service.ProcessInput{
		File:     bytes.NewReader([]byte("%PDF-1.4 short")),
		FileName: "report.pdf",
		Size:     4096,
	})

	assert.ErrorIs(t, err, domain.ErrFileTooSmall)
	parserMock.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestFileProcessor_Process_StreamLargerThanMax(t *testing.T) {
	parserMock := new(mocks.MockDocumentParser)
	proc := service.NewFileProcessor(parserMock, testUploadConfig(t), metrics.New())

	_, _, err := proc.Process(context.Background(), service.ProcessInput{
		File:     bytes.NewReader(bytes.Repeat([]byte("a"), 1024*1024+10)),
		FileName: "report.pdf",
		Size:     2048,
	})

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	parserMock.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestFileProcessor_Process_Success(t *testing.T) {
	parserMock := new(mocks.MockDocumentParser)
	cfg := testUploadConfig(t)
	proc := service.NewFileProcessor(parserMock, cfg, metrics.New())

	var sentPath string
	parserMock.On("Parse", mock.Anything, mock.MatchedBy(func(in port.ParseInput) bool {
		return in.FileName == "report.pdf" && in.ContentType == "application/pdf" && in.Options.OCR == domain.OCRModeForce
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(port.ParseInput)
		sentPath = in.FilePath
		data, err := os.ReadFile(in.FilePath)
		assert.NoError(t, err)
		assert.Equal(t, pdfContent(), data)
	}).Return(sampleResult(), nil)

	result, doc, err := proc.Process(context.Background(), service.ProcessInput{
		File:     bytes.NewReader(pdfContent()),
		FileName: "report.pdf",
		Size:     int64(len(pdfContent())),
		Options:  domain.ParseOptions{OCR: domain.OCRModeForce, ExtractImages: true},
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Elements, 2)
	assert.Equal(t, "# Title", result.Elements[0].Content.Markdown)
	assert.Equal(t, "Title", result.Elements[0].Content.Text)

	assert.Equal(t, "report.pdf", doc.FileName)
	assert.Equal(t, domain.FileTypePDF, doc.FileType)
	assert.Equal(t, int64(len(pdfContent())), doc.Size)
	assert.Equal(t, 2, doc.PageCount)

	_, statErr := os.Stat(sentPath)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "temp file should be removed")
	parserMock.AssertExpectations(t)
}

func TestFileProcessor_Process_VendorErrorRemovesTempFile(t *testing.T) {
	parserMock := new(mocks.MockDocumentParser)
	cfg := testUploadConfig(t)
	proc := service.NewFileProcessor(parserMock, cfg, metrics.New())

	vendorErr := &domain.VendorError{Provider: "upstage", StatusCode: 500, Message: "internal error"}
	parserMock.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).Return(nil, vendorErr)

	result, doc, err := proc.Process(context.Background(), service.ProcessInput{
		File:     bytes.NewReader(pdfContent()),
		FileName: "report.pdf",
		Size:     int64(len(pdfContent())),
	})

	assert.Nil(t, result)
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrVendor)

	entries, _ := os.ReadDir(cfg.TempDir)
	assert.Empty(t, entries)
}
