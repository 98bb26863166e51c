package viewer

import (
	"sort"

	"parseview/internal/domain"
)

// CategoryCount is the number of elements in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

// Stats summarizes a parse result.
type Stats struct {
	TotalElements int             `json:"total_elements"`
	Pages         int             `json:"pages"`
	Images        int             `json:"images"`
	OCREnhanced   int             `json:"ocr_enhanced"`
	TextElements  int             `json:"text_elements"`
	Categories    map[string]int  `json:"categories"`
	Distribution  []CategoryCount `json:"distribution"`
}

// NewStats counts elements by kind and category. Distribution is sorted by
// descending count, then category name.
func NewStats(result *domain.ParseResult) Stats {
	st := Stats{Categories: map[string]int{}, Distribution: []CategoryCount{}}
	if result == nil {
		return st
	}
	st.TotalElements = len(result.Elements)
	st.Pages = result.PageCount()
	for i := range result.Elements {
		el := &result.Elements[i]
		st.Categories[el.Category]++
		if el.HasImage() {
			st.Images++
		} else {
			st.TextElements++
		}
		if el.OCREnhanced {
			st.OCREnhanced++
		}
	}
	for cat, n := range st.Categories {
		st.Distribution = append(st.Distribution, CategoryCount{Category: cat, Color: ColorFor(cat), Count: n})
	}
	sort.Slice(st.Distribution, func(i, j int) bool {
		a, b := st.Distribution[i], st.Distribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})
	return st
}
