package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"parseview/internal/domain"
)

func sampleResult() *domain.ParseResult {
	return &domain.ParseResult{
		Elements: []domain.Element{
			{
				ID: 0, Order: 0, Page: 1, Category: "heading1",
				BoundingBox: domain.BoundingBox{X: 0.1, Y: 0.05, Width: 0.8, Height: 0.05},
				Content:     domain.Content{Text: " Annual Report "},
			},
			{
				ID: 1, Order: 1, Page: 2, Category: "figure",
				Base64Encoding: "iVBORw0KGgo=",
				OCREnhanced:    true,
				Content:        domain.Content{Markdown: "![chart](x)"},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, columns, rows[0])
	assert.Equal(t, []string{"0", "0", "1", "heading1", "0.1000", "0.0500", "0.8000", "0.0500", "No", "No", "Annual Report"}, rows[1])
	assert.Equal(t, "Yes", rows[2][8])
	assert.Equal(t, "Yes", rows[2][9])
	assert.Equal(t, "![chart](x)", rows[2][10])
}

func TestWriteCSV_NilResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Order", rows[0][0])
	assert.Equal(t, "heading1", rows[1][3])
	assert.Equal(t, "Annual Report", rows[1][10])
	assert.Equal(t, "figure", rows[2][3])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuildFilename(t *testing.T) {
	assert.Equal(t, "Q3_report_2024_elements.csv", BuildFilename("Q3 report (2024).pdf", FormatCSV))
	assert.Equal(t, "document_elements.xlsx", BuildFilename("###.png", FormatXLSX))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"simple", "simple"},
		{"with spaces here", "with_spaces_here"},
		{"a//b\\c", "a_b_c"},
		{"__lead__", "lead"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in))
	}
}
