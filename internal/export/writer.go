// Package export writes the elements of a parse result as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"parseview/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseFormat resolves a query value into a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: export format %q", domain.ErrInvalidOption, s)
	}
}

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var columns = []string{
	"Order",
	"ID",
	"Page",
	"Category",
	"X",
	"Y",
	"Width",
	"Height",
	"Has Image",
	"OCR Enhanced",
	"Text",
}

// Columns returns a copy of the header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

// Writer wraps csv.Writer for exporting elements as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteElements writes one row per element in vendor order.
func (w *Writer) WriteElements(elements []domain.Element) error {
	for i := range elements {
		if err := w.csv.Write(elementToRow(&elements[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a BOM, the header and every element of result to out.
func WriteCSV(out io.Writer, result *domain.ParseResult) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if result != nil {
		if err := w.WriteElements(result.Elements); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func elementToRow(el *domain.Element) []string {
	text := el.Content.Text
	if text == "" {
		text = el.Content.Markdown
	}
	return []string{
		strconv.Itoa(el.Order),
		strconv.Itoa(el.ID),
		strconv.Itoa(el.Page),
		el.Category,
		formatCoord(el.BoundingBox.X),
		formatCoord(el.BoundingBox.Y),
		formatCoord(el.BoundingBox.Width),
		formatCoord(el.BoundingBox.Height),
		formatBool(el.HasImage()),
		formatBool(el.OCREnhanced),
		strings.TrimSpace(text),
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the download name for an export of the given source file.
// Format: {sanitized_base_name}_elements.{ext}
func BuildFilename(sourceName string, f Format) string {
	base := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	sanitized := SanitizeFilename(base)
	if sanitized == "" {
		sanitized = "document"
	}
	return fmt.Sprintf("%s_elements.%s", sanitized, f)
}
