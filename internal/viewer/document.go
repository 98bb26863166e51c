package viewer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"parseview/internal/domain"
)

const (
	ocrBorder     = "2px solid " + OCRColor
	defaultBorder = "1px solid rgba(0,0,0,0.1)"
)

// DocumentView is the reading view of a result: full renderings, per-page HTML
// in reading order and a coordinate-preserving layout.
type DocumentView struct {
	HTML     template.HTML `json:"html"`
	Markdown string        `json:"markdown"`
	Text     string        `json:"text"`
	Pages    []PageView    `json:"pages"`
}

// PageView is one page of the document view.
type PageView struct {
	Page   int           `json:"page"`
	HTML   template.HTML `json:"html"`
	Layout []LayoutItem  `json:"layout"`
}

// LayoutItem positions an element on its page using percentages of the page size.
type LayoutItem struct {
	Index         int           `json:"index"`
	ID            int           `json:"id"`
	Category      string        `json:"category"`
	Left          float64       `json:"left"`
	Top           float64       `json:"top"`
	Width         float64       `json:"width"`
	Height        float64       `json:"height"`
	Border        string        `json:"border"`
	OCREnhanced   bool          `json:"ocr_enhanced"`
	HTML          template.HTML `json:"html,omitempty"`
	ImageSrc      template.URL  `json:"image_src,omitempty"`
	ExtractedText string        `json:"extracted_text,omitempty"`
}

// Style returns the inline CSS that places the item on its page.
func (l LayoutItem) Style() template.CSS {
	return template.CSS(fmt.Sprintf("left:%.2f%%;top:%.2f%%;width:%.2f%%;height:%.2f%%;border:%s;",
		l.Left, l.Top, l.Width, l.Height, l.Border))
}

// Sanitizer cleans vendor HTML before it is embedded in a page.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns a sanitizer allowing user-generated markup and inline data images.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowAttrs("style").OnElements("td", "th", "table", "span", "div")
	return &Sanitizer{policy: p}
}

// Sanitize returns html with scripts, handlers and unsafe URLs removed.
func (s *Sanitizer) Sanitize(html string) template.HTML {
	return template.HTML(s.policy.Sanitize(html))
}

// NewDocumentView builds the reading view. Page HTML concatenates element
// renderings sorted by page and top edge.
func NewDocumentView(result *domain.ParseResult, s *Sanitizer) (*DocumentView, error) {
	if result == nil {
		return nil, domain.ErrResultNotFound
	}
	if s == nil {
		s = NewSanitizer()
	}

	view := &DocumentView{
		HTML:     s.Sanitize(result.Content.HTML),
		Markdown: result.Content.Markdown,
		Text:     result.Content.Text,
		Pages:    []PageView{},
	}

	pageIdx := map[int]int{}
	parts := map[int][]string{}
	for _, i := range domain.ReadingOrder(result.Elements) {
		el := &result.Elements[i]
		pos, ok := pageIdx[el.Page]
		if !ok {
			pos = len(view.Pages)
			pageIdx[el.Page] = pos
			view.Pages = append(view.Pages, PageView{Page: el.Page, Layout: []LayoutItem{}})
		}
		if el.Content.HTML != "" {
			parts[el.Page] = append(parts[el.Page], el.Content.HTML)
		}
		if el.HasCoordinates() {
			view.Pages[pos].Layout = append(view.Pages[pos].Layout, newLayoutItem(i, el, s))
		}
	}
	for i := range view.Pages {
		view.Pages[i].HTML = s.Sanitize(strings.Join(parts[view.Pages[i].Page], "<br>"))
	}
	return view, nil
}

func newLayoutItem(index int, el *domain.Element, s *Sanitizer) LayoutItem {
	item := LayoutItem{
		Index:       index,
		ID:          el.ID,
		Category:    el.Category,
		Left:        el.BoundingBox.X * 100,
		Top:         el.BoundingBox.Y * 100,
		Width:       el.BoundingBox.Width * 100,
		Height:      el.BoundingBox.Height * 100,
		Border:      defaultBorder,
		OCREnhanced: el.OCREnhanced,
	}
	if el.OCREnhanced {
		item.Border = ocrBorder
	}
	if el.HasImage() {
		mime := el.ImageMimeType
		if mime == "" {
			mime = "image/jpeg"
		}
		item.ImageSrc = template.URL("data:" + mime + ";base64," + el.Base64Encoding)
		if el.OCREnhanced {
			item.ExtractedText = strings.TrimSpace(el.Content.Text)
		}
		return item
	}
	item.HTML = s.Sanitize(el.Content.HTML)
	return item
}
