package viewer_test

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parseview/internal/domain"
	"parseview/internal/viewer"
)

func element(id, page int, category string, x, y, w, h float64) domain.Element {
	return domain.Element{
		ID:       id,
		Order:    id,
		Category: category,
		Page:     page,
		Coordinates: []domain.Coordinate{
			{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h},
		},
		BoundingBox: domain.BoundingBox{PageIndex: page - 1, X: x, Y: y, Width: w, Height: h},
		Content:     domain.Content{HTML: "<p>el " + category + "</p>", Text: "el " + category},
	}
}

func sampleResult() *domain.ParseResult {
	fig := element(2, 1, "figure", 0.1, 0.5, 0.5, 0.3)
	fig.Base64Encoding = "iVBORw0KGgo="
	fig.ImageMimeType = "image/png"
	fig.OCREnhanced = true
	fig.Content.Text = "  chart caption  "

	return &domain.ParseResult{
		API:     "upstage-document-parse",
		Content: domain.Content{HTML: "<h1>Title</h1><script>alert(1)</script>", Markdown: "# Title"},
		Elements: []domain.Element{
			element(0, 1, "heading1", 0.1, 0.05, 0.8, 0.05),
			element(1, 1, "paragraph", 0.1, 0.2, 0.8, 0.2),
			fig,
			element(3, 2, "table", 0.1, 0.4, 0.8, 0.3),
			element(4, 2, "paragraph", 0.1, 0.1, 0.8, 0.1),
			{ID: 5, Category: "footer", Page: 2},
		},
	}
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "#e74c3c", viewer.ColorFor("heading1"))
	assert.Equal(t, viewer.DefaultColor, viewer.ColorFor("composite_table"))
	assert.Equal(t, viewer.DefaultColor, viewer.ColorFor("sidebar"))
	assert.Len(t, viewer.Legend(), len(viewer.CategoryColors))
}

func TestElementsOnPage(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, []int{0, 1, 2}, viewer.ElementsOnPage(r, 1))
	assert.Equal(t, []int{3, 4, 5}, viewer.ElementsOnPage(r, 2))
	assert.Empty(t, viewer.ElementsOnPage(r, 3))
	assert.Equal(t, 2, viewer.PageCount(r))
}

func TestNewElementView_HighlightsExactlySelected(t *testing.T) {
	r := sampleResult()

	for sel := range r.Elements {
		view, err := viewer.NewElementView(r, 0, sel)
		require.NoError(t, err)

		assert.Equal(t, r.Elements[sel].Page, view.Page)
		count := 0
		for _, b := range view.Boxes {
			if b.Highlighted {
				count++
				assert.Equal(t, sel, b.Index)
			}
		}
		if r.Elements[sel].HasCoordinates() {
			assert.Equal(t, 1, count, "selection %d", sel)
		} else {
			assert.Equal(t, 0, count, "selection %d", sel)
		}
		require.NotNil(t, view.Selection)
		assert.Equal(t, r.Elements[sel].ID, view.Selection.ID)
	}
}

func TestNewElementView_NoSelection(t *testing.T) {
	view, err := viewer.NewElementView(sampleResult(), 1, -1)
	require.NoError(t, err)

	assert.Equal(t, -1, view.Selected)
	assert.Nil(t, view.Selection)
	assert.Len(t, view.Boxes, 3)
	for _, b := range view.Boxes {
		assert.False(t, b.Highlighted)
	}
}

func TestNewElementView_BoxGeometry(t *testing.T) {
	view, err := viewer.NewElementView(sampleResult(), 1, -1)
	require.NoError(t, err)

	h := view.Boxes[0]
	assert.Equal(t, "heading1 (0)", h.Label)
	assert.Equal(t, "#e74c3c", h.Color)
	assert.InDelta(t, 80, h.X, 1e-9)
	assert.InDelta(t, 0.05*viewer.CanvasHeight, h.Y, 1e-9)
	assert.InDelta(t, 640, h.Width, 1e-9)
	assert.Equal(t, 2, h.LineWidth)

	fig := view.Boxes[2]
	assert.Equal(t, "figure (2) [OCR]", fig.Label)
	assert.True(t, fig.HasImage)
	assert.Equal(t, 4, fig.LineWidth)
}

func TestNewElementView_SkipsElementsWithoutCoordinates(t *testing.T) {
	view, err := viewer.NewElementView(sampleResult(), 2, -1)
	require.NoError(t, err)

	assert.Len(t, view.Elements, 3)
	assert.Len(t, view.Boxes, 2)
}

func TestNewElementView_OutOfRange(t *testing.T) {
	r := sampleResult()

	_, err := viewer.NewElementView(r, 1, len(r.Elements))
	assert.ErrorIs(t, err, domain.ErrSelectionOutOfRange)

	_, err = viewer.NewElementView(r, 3, -1)
	assert.ErrorIs(t, err, domain.ErrPageOutOfRange)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = viewer.NewElementView(nil, 1, -1)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
}

func TestNewElementView_SelectionOnOtherPage(t *testing.T) {
	r := sampleResult()

	_, err := viewer.NewElementView(r, 1, 3)
	assert.ErrorIs(t, err, domain.ErrSelectionOutOfRange)

	view, err := viewer.NewElementView(r, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Selected)
	require.NotNil(t, view.Selection)
	assert.Equal(t, 3, view.Selection.ID)
	assert.True(t, view.Boxes[0].Highlighted)
}

func TestNewElementView_EmptyResult(t *testing.T) {
	view, err := viewer.NewElementView(&domain.ParseResult{}, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Page)
	assert.Empty(t, view.Boxes)
}

func TestNewDocumentView(t *testing.T) {
	view, err := viewer.NewDocumentView(sampleResult(), nil)
	require.NoError(t, err)

	assert.NotContains(t, string(view.HTML), "<script>")
	assert.Contains(t, string(view.HTML), "<h1>Title</h1>")
	assert.Equal(t, "# Title", view.Markdown)

	require.Len(t, view.Pages, 2)
	assert.Equal(t, 1, view.Pages[0].Page)

	// page 2 is rendered top-down regardless of vendor order
	p2 := string(view.Pages[1].HTML)
	assert.Less(t, strings.Index(p2, "el paragraph"), strings.Index(p2, "el table"))
	assert.Contains(t, p2, "<br>")

	layout := view.Pages[0].Layout
	require.Len(t, layout, 3)
	assert.InDelta(t, 10, layout[0].Left, 1e-9)
	assert.InDelta(t, 5, layout[0].Top, 1e-9)
	assert.Equal(t, "1px solid rgba(0,0,0,0.1)", layout[0].Border)
	assert.Contains(t, string(layout[0].Style()), "left:10.00%")

	fig := layout[2]
	assert.Equal(t, "2px solid #28a745", fig.Border)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", string(fig.ImageSrc))
	assert.Equal(t, "chart caption", fig.ExtractedText)
	assert.Empty(t, fig.HTML)
}

func TestSanitizer_KeepsDataImages(t *testing.T) {
	s := viewer.NewSanitizer()
	out := string(s.Sanitize(`<img src="data:image/png;base64,iVBORw0KGgo=" onerror="x()">`))
	assert.Contains(t, out, "data:image/png;base64")
	assert.NotContains(t, out, "onerror")
}

func TestNewStats(t *testing.T) {
	st := viewer.NewStats(sampleResult())

	assert.Equal(t, 6, st.TotalElements)
	assert.Equal(t, 2, st.Pages)
	assert.Equal(t, 1, st.Images)
	assert.Equal(t, 5, st.TextElements)
	assert.Equal(t, 1, st.OCREnhanced)
	assert.Equal(t, 2, st.Categories["paragraph"])
	require.NotEmpty(t, st.Distribution)
	assert.Equal(t, "paragraph", st.Distribution[0].Category)

	empty := viewer.NewStats(nil)
	assert.Zero(t, empty.TotalElements)
	assert.NotNil(t, empty.Categories)
}

func TestRenderPNG(t *testing.T) {
	view, err := viewer.NewElementView(sampleResult(), 1, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, viewer.RenderPNG(&buf, view))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, viewer.CanvasWidth, img.Bounds().Dx())
	assert.Equal(t, viewer.CanvasHeight, img.Bounds().Dy())

	// outside every box stays white
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r&g&b)

	// inside the highlighted paragraph box is tinted
	hx := viewer.CanvasWidth / 2
	hy := viewer.CanvasHeight * 3 / 10
	r, g, b, _ = img.At(hx, hy).RGBA()
	assert.NotEqual(t, uint32(0xffff), r&g&b)

	assert.Error(t, viewer.RenderPNG(&buf, nil))
}
