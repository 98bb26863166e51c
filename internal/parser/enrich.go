package parser

import (
	"encoding/base64"
	"net/http"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"parseview/internal/domain"
)

// Enrich fills in derived fields after vendor normalization: image MIME types,
// the OCR flag, and missing markdown/text renderings. Element order is never changed.
func Enrich(result *domain.ParseResult) {
	if result == nil {
		return
	}
	conv := md.NewConverter("", true, nil)

	for i := range result.Elements {
		el := &result.Elements[i]
		if el.HasImage() {
			el.ImageMimeType = ImageMimeType(el.Base64Encoding)
			// The vendor OCRs image crops itself; text next to an image means it did.
			el.OCREnhanced = strings.TrimSpace(el.Content.Text) != ""
		}
		if el.Content.Markdown == "" && el.Content.HTML != "" {
			el.Content.Markdown = HTMLToMarkdown(conv, el.Content.HTML)
		}
		if el.Content.Text == "" && el.Content.HTML != "" {
			el.Content.Text = HTMLToText(el.Content.HTML)
		}
	}

	if result.Content.Markdown == "" {
		if result.Content.HTML != "" {
			result.Content.Markdown = HTMLToMarkdown(conv, result.Content.HTML)
		} else {
			result.Content.Markdown = joinReadingOrder(result.Elements, func(e *domain.Element) string { return e.Content.Markdown })
		}
	}
	if result.Content.Text == "" {
		if result.Content.HTML != "" {
			result.Content.Text = HTMLToText(result.Content.HTML)
		} else {
			result.Content.Text = joinReadingOrder(result.Elements, func(e *domain.Element) string { return e.Content.Text })
		}
	}
}

// HTMLToMarkdown converts an HTML fragment to markdown, returning "" on failure.
func HTMLToMarkdown(conv *md.Converter, html string) string {
	out, err := conv.ConvertString(html)
	if err != nil {
		log.Warn().Err(err).Msg("parser.Enrich: markdown conversion failed")
		return ""
	}
	return strings.TrimSpace(out)
}

// HTMLToText extracts visible text from an HTML fragment with whitespace collapsed.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func joinReadingOrder(elements []domain.Element, pick func(e *domain.Element) string) string {
	var parts []string
	for _, i := range domain.ReadingOrder(elements) {
		if s := strings.TrimSpace(pick(&elements[i])); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ImageMimeType sniffs the image format of base64 data with http.DetectContentType.
// Non-image content falls back to image/jpeg; undecodable input yields "".
func ImageMimeType(b64 string) string {
	head := b64
	if len(head) > 32 {
		head = head[:32]
	}
	decoded, err := base64.StdEncoding.DecodeString(head)
	if err != nil || len(decoded) == 0 {
		return ""
	}
	if mime := http.DetectContentType(decoded); strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/jpeg"
}
