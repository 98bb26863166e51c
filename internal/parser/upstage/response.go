package upstage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"parseview/internal/domain"
)

// rawResponse mirrors the vendor payload loosely; several fields come in more
// than one shape and are decoded by hand.
type rawResponse struct {
	API      string                 `json:"api"`
	Model    string                 `json:"model"`
	Content  json.RawMessage        `json:"content"`
	Elements json.RawMessage        `json:"elements"`
	Usage    map[string]interface{} `json:"usage"`
}

type rawElement struct {
	ID             int               `json:"id"`
	Category       string            `json:"category"`
	Content        json.RawMessage   `json:"content"`
	Coordinates    []json.RawMessage `json:"coordinates"`
	Page           int               `json:"page"`
	Confidence     *float64          `json:"confidence"`
	Base64Encoding json.RawMessage   `json:"base64_encoding"`
}

func normalizeResponse(body []byte) (*domain.ParseResult, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	content, err := decodeContent(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	result := &domain.ParseResult{
		API:      raw.API,
		Model:    raw.Model,
		Content:  content,
		Elements: []domain.Element{},
		Usage:    raw.Usage,
	}
	if result.API == "" {
		result.API = "upstage-document-parse"
	}
	if result.Model == "" {
		result.Model = defaultModel
	}

	switch {
	case isPresent(raw.Elements):
		var rawElements []rawElement
		if err := json.Unmarshal(raw.Elements, &rawElements); err != nil {
			return nil, fmt.Errorf("elements: %w", err)
		}
		for i := range rawElements {
			el, err := normalizeElement(&rawElements[i])
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			el.Order = i
			result.Elements = append(result.Elements, el)
		}
	case isPresent(raw.Content):
		// No element list: the whole document becomes one element.
		result.Elements = append(result.Elements, domain.Element{
			ID:       1,
			Order:    0,
			Category: domain.CategoryDocument,
			Content:  content,
			Page:     1,
			BoundingBox: domain.BoundingBox{
				PageIndex: 0,
			},
		})
	}

	return result, nil
}

func normalizeElement(raw *rawElement) (domain.Element, error) {
	content, err := decodeContent(raw.Content)
	if err != nil {
		return domain.Element{}, fmt.Errorf("content: %w", err)
	}

	page := raw.Page
	if page < 1 {
		page = 1
	}
	category := raw.Category
	if category == "" {
		category = domain.CategoryUnknown
	}

	coords := make([]domain.Coordinate, 0, len(raw.Coordinates))
	for _, rc := range raw.Coordinates {
		if c, ok := decodeCoordinate(rc); ok {
			coords = append(coords, c)
		}
	}

	return domain.Element{
		ID:             raw.ID,
		Category:       category,
		Content:        content,
		Coordinates:    coords,
		Page:           page,
		BoundingBox:    boundingBox(coords, page),
		Confidence:     raw.Confidence,
		Base64Encoding: decodeBase64Field(raw.Base64Encoding),
	}, nil
}

// decodeContent accepts either a plain string (treated as text) or an object
// with html/markdown/text fields.
func decodeContent(raw json.RawMessage) (domain.Content, error) {
	if !isPresent(raw) {
		return domain.Content{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.Content{Text: s}, nil
	}
	var c domain.Content
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Content{}, errors.New("expected string or object")
	}
	return c, nil
}

// decodeCoordinate accepts {"x":..,"y":..} or [x, y]. Anything else is skipped.
func decodeCoordinate(raw json.RawMessage) (domain.Coordinate, bool) {
	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.X != nil && obj.Y != nil {
		return domain.Coordinate{X: *obj.X, Y: *obj.Y}, true
	}
	var pair []float64
	if err := json.Unmarshal(raw, &pair); err == nil && len(pair) >= 2 {
		return domain.Coordinate{X: pair[0], Y: pair[1]}, true
	}
	return domain.Coordinate{}, false
}

// decodeBase64Field accepts a string or {"data": "..."}.
func decodeBase64Field(raw json.RawMessage) string {
	if !isPresent(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Data
	}
	return ""
}

func boundingBox(coords []domain.Coordinate, page int) domain.BoundingBox {
	box := domain.BoundingBox{PageIndex: page - 1}
	if len(coords) == 0 {
		return box
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range coords {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	box.X = minX
	box.Y = minY
	box.Width = maxX - minX
	box.Height = maxY - minY
	return box
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
