package viewer

import (
	"image/color"
	"sort"
	"strconv"
	"strings"
)

// DefaultColor is used for categories without an assigned colour.
const DefaultColor = "#95a5a6"

// CategoryColors assigns a display colour to each known element category.
var CategoryColors = map[string]string{
	"heading1":  "#e74c3c",
	"heading2":  "#c0392b",
	"paragraph": "#3498db",
	"table":     "#e67e22",
	"figure":    "#27ae60",
	"chart":     "#f39c12",
	"list":      "#9b59b6",
	"footer":    "#95a5a6",
	"header":    "#34495e",
	"unknown":   "#bdc3c7",
}

// OCRColor marks OCR-enhanced elements.
const OCRColor = "#28a745"

// ColorFor returns the hex colour for a category.
func ColorFor(category string) string {
	if c, ok := CategoryColors[category]; ok {
		return c
	}
	return DefaultColor
}

// LegendEntry is one row of the category legend.
type LegendEntry struct {
	Category string `json:"category"`
	Color    string `json:"color"`
}

// Legend returns the category colours sorted by category name.
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(CategoryColors))
	for cat, c := range CategoryColors {
		out = append(out, LegendEntry{Category: cat, Color: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// parseHex converts "#rrggbb" into an opaque RGBA colour. Malformed input yields grey.
func parseHex(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{R: 0x95, G: 0xa5, B: 0xa6, A: 0xff}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{R: 0x95, G: 0xa5, B: 0xa6, A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
