// Package viewer turns a parse result into page views. Every function here is
// a pure function of its inputs.
package viewer

import (
	"fmt"

	"parseview/internal/domain"
)

// Canvas size used for box geometry. The height follows the A4 aspect ratio.
const (
	CanvasWidth  = 800
	CanvasHeight = 1131
)

// Box is one element's rectangle on the page canvas, in pixels.
type Box struct {
	Index       int     `json:"index"`
	ID          int     `json:"id"`
	Category    string  `json:"category"`
	Label       string  `json:"label"`
	Color       string  `json:"color"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	LineWidth   int     `json:"line_width"`
	HasImage    bool    `json:"has_image"`
	OCREnhanced bool    `json:"ocr_enhanced"`
	Highlighted bool    `json:"highlighted"`
}

// ElementView is the bounding-box view of one page with an optional selection.
type ElementView struct {
	Page         int             `json:"page"`
	PageCount    int             `json:"page_count"`
	Selected     int             `json:"selected"`
	CanvasWidth  int             `json:"canvas_width"`
	CanvasHeight int             `json:"canvas_height"`
	Boxes        []Box           `json:"boxes"`
	Elements     []PageElement   `json:"elements"`
	Selection    *domain.Element `json:"selection,omitempty"`
	Legend       []LegendEntry   `json:"legend"`
}

// PageElement pairs an element on the page with its index in the full result.
type PageElement struct {
	Index       int             `json:"index"`
	Highlighted bool            `json:"highlighted"`
	Element     *domain.Element `json:"element"`
}

// PageCount returns the number of pages referenced by the result.
func PageCount(result *domain.ParseResult) int {
	if result == nil {
		return 0
	}
	return result.PageCount()
}

// ElementsOnPage returns the indexes of the elements on a 1-based page, in vendor order.
func ElementsOnPage(result *domain.ParseResult, page int) []int {
	if result == nil {
		return nil
	}
	var idx []int
	for i := range result.Elements {
		if result.Elements[i].Page == page {
			idx = append(idx, i)
		}
	}
	return idx
}

// ResolvePage validates a 1-based page number. Page 0 resolves to the selected
// element's page, or to the first page when nothing is selected.
func ResolvePage(result *domain.ParseResult, page, selected int) (int, error) {
	if result == nil {
		return 0, domain.ErrResultNotFound
	}
	pages := PageCount(result)
	if page == 0 {
		if selected >= 0 && selected < len(result.Elements) {
			return result.Elements[selected].Page, nil
		}
		return 1, nil
	}
	if page < 0 || page > max(pages, 1) {
		return 0, fmt.Errorf("%w: page %d (document has %d)", domain.ErrPageOutOfRange, page, pages)
	}
	return page, nil
}

// NewElementView builds the bounding-box view for a page. Exactly the element
// whose index equals selected is highlighted; a negative selected means none.
// A selected element must lie on the requested page.
func NewElementView(result *domain.ParseResult, page, selected int) (*ElementView, error) {
	if result == nil {
		return nil, domain.ErrResultNotFound
	}
	if selected >= len(result.Elements) {
		return nil, fmt.Errorf("%w: %d (document has %d elements)", domain.ErrSelectionOutOfRange, selected, len(result.Elements))
	}
	if selected < 0 {
		selected = -1
	}
	page, err := ResolvePage(result, page, selected)
	if err != nil {
		return nil, err
	}
	if selected >= 0 && result.Elements[selected].Page != page {
		return nil, fmt.Errorf("%w: element %d is on page %d, not page %d",
			domain.ErrSelectionOutOfRange, selected, result.Elements[selected].Page, page)
	}

	view := &ElementView{
		Page:         page,
		PageCount:    PageCount(result),
		Selected:     selected,
		CanvasWidth:  CanvasWidth,
		CanvasHeight: CanvasHeight,
		Boxes:        []Box{},
		Elements:     []PageElement{},
		Legend:       Legend(),
	}
	if selected >= 0 {
		view.Selection = &result.Elements[selected]
	}

	for _, i := range ElementsOnPage(result, page) {
		el := &result.Elements[i]
		view.Elements = append(view.Elements, PageElement{Index: i, Highlighted: i == selected, Element: el})
		if !el.HasCoordinates() {
			continue
		}
		view.Boxes = append(view.Boxes, newBox(i, el, i == selected))
	}
	return view, nil
}

func newBox(index int, el *domain.Element, highlighted bool) Box {
	label := fmt.Sprintf("%s (%d)", el.Category, el.ID)
	if el.OCREnhanced {
		label += " [OCR]"
	}
	return Box{
		Index:       index,
		ID:          el.ID,
		Category:    el.Category,
		Label:       label,
		Color:       ColorFor(el.Category),
		X:           el.BoundingBox.X * CanvasWidth,
		Y:           el.BoundingBox.Y * CanvasHeight,
		Width:       el.BoundingBox.Width * CanvasWidth,
		Height:      el.BoundingBox.Height * CanvasHeight,
		LineWidth:   lineWidth(el),
		HasImage:    el.HasImage(),
		OCREnhanced: el.OCREnhanced,
		Highlighted: highlighted,
	}
}

func lineWidth(el *domain.Element) int {
	switch {
	case el.OCREnhanced:
		return 4
	case el.HasImage():
		return 3
	default:
		return 2
	}
}
