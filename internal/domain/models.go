package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ParseOptions are the user-selected options forwarded to the vendor.
type ParseOptions struct {
	OCR           OCRMode        `json:"ocr"`
	ExtractImages bool           `json:"extract_images"`
	OutputFormats []OutputFormat `json:"output_formats,omitempty"`
}

// ParseRequest is an upload on its way to the vendor. It is discarded once forwarded.
type ParseRequest struct {
	FileName    string
	ContentType string
	Size        int64
	TempPath    string
	PageCount   int
	Options     ParseOptions
}

// Coordinate is a normalized (0..1) point on a page.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the page-relative rectangle covering an element.
// PageIndex is zero-based; X, Y, Width and Height are fractions of the page size.
type BoundingBox struct {
	PageIndex int     `json:"page_index"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (b BoundingBox) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b BoundingBox) Bottom() float64 { return b.Y + b.Height }

// IsEmpty reports whether the box has no area.
func (b BoundingBox) IsEmpty() bool { return b.Width <= 0 || b.Height <= 0 }

// Content holds the renderings the vendor returns for a document or element.
type Content struct {
	HTML     string `json:"html"`
	Markdown string `json:"markdown"`
	Text     string `json:"text"`
}

// Element is one parsed content unit. Elements are immutable once produced by the vendor.
type Element struct {
	ID             int          `json:"id"`
	Order          int          `json:"order"`
	Category       string       `json:"category"`
	Content        Content      `json:"content"`
	Coordinates    []Coordinate `json:"coordinates"`
	Page           int          `json:"page"`
	BoundingBox    BoundingBox  `json:"bounding_box"`
	Confidence     *float64     `json:"confidence,omitempty"`
	Base64Encoding string       `json:"base64_encoding,omitempty"`
	ImageMimeType  string       `json:"image_mime_type,omitempty"`
	OCREnhanced    bool         `json:"ocr_enhanced"`
}

// HasImage reports whether the vendor returned an image crop for the element.
func (e *Element) HasImage() bool {
	return e.Base64Encoding != ""
}

// HasCoordinates reports whether the element can be placed on a page.
func (e *Element) HasCoordinates() bool {
	return len(e.Coordinates) >= 4 && !e.BoundingBox.IsEmpty()
}

// ParseResult is the vendor's structured output for one document.
// Elements keep the vendor's ordering.
type ParseResult struct {
	API      string                 `json:"api"`
	Model    string                 `json:"model"`
	Content  Content                `json:"content"`
	Elements []Element              `json:"elements"`
	Usage    map[string]interface{} `json:"usage,omitempty"`
}

// PageCount returns the highest page number referenced by any element.
func (r *ParseResult) PageCount() int {
	pages := 0
	for i := range r.Elements {
		if r.Elements[i].Page > pages {
			pages = r.Elements[i].Page
		}
	}
	return pages
}

// ReadingOrder returns indexes into elements sorted by page and then top edge.
// The input slice is not modified.
func ReadingOrder(elements []Element) []int {
	idx := make([]int, len(elements))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ea, eb := &elements[idx[a]], &elements[idx[b]]
		if ea.Page != eb.Page {
			return ea.Page < eb.Page
		}
		return ea.BoundingBox.Y < eb.BoundingBox.Y
	})
	return idx
}

// DocumentInfo describes the uploaded file a result was produced from.
type DocumentInfo struct {
	FileName    string   `json:"file_name"`
	FileType    FileType `json:"file_type"`
	ContentType string   `json:"content_type"`
	Size        int64    `json:"size"`
	PageCount   int      `json:"page_count,omitempty"`
}

// SessionResult is the current result for a session, as held by the result store.
type SessionResult struct {
	SessionID string       `json:"session_id"`
	Document  DocumentInfo `json:"document"`
	Options   ParseOptions `json:"options"`
	Result    *ParseResult `json:"result"`
	ParsedAt  time.Time    `json:"parsed_at"`
}

// SessionState is the observable upload state of a session.
type SessionState struct {
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ValidateSessionID checks that id is a canonical UUID before it is used as a
// store key or file name.
func ValidateSessionID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
