// Package render resolves stored page elements into what a client has to draw
package render

import (
	"scrapbook/layout"
	"scrapbook/models"
	"sort"
)

type Item struct {
	ID        uint64             `json:"id"`
	Type      models.ElementType `json:"type"`
	Placement layout.Placement   `json:"placement"`
	ZIndex    int                `json:"z_index"`
	Resource  string             `json:"resource,omitempty"`
	Text      *layout.TextStyle  `json:"text,omitempty"`
}

// Page returns the elements in paint order (z-index, then ID) with absolute coordinates.
// Text fields whose resource cannot be decoded are drawn with the default style.
func Page(elements []models.PageElement, page layout.Size) []Item {
	items := make([]Item, 0, len(elements))
	for i := range elements {
		e := &elements[i]
		item := Item{
			ID:        e.ID,
			Type:      e.Type,
			Placement: layout.ToAbsolute(e.Transform(), page),
			ZIndex:    e.ZIndex,
		}
		if e.Type == models.ElementText {
			style, err := layout.DecodeText(e.Resource)
			if err != nil {
				style = layout.TextStyle{FontSize: layout.DefaultFontSize, Color: 0xFF000000, Text: e.Resource}
			}
			item.Text = &style
		} else {
			item.Resource = e.Resource
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ZIndex != items[j].ZIndex {
			return items[i].ZIndex < items[j].ZIndex
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// Pages groups the elements of an album by page number
func Pages(elements []models.PageElement, pageCount int, page layout.Size) map[int][]Item {
	byPage := make(map[int][]models.PageElement, pageCount)
	for _, e := range elements {
		byPage[e.PageNumber] = append(byPage[e.PageNumber], e)
	}
	result := make(map[int][]Item, pageCount)
	for n := 1; n <= pageCount; n++ {
		result[n] = Page(byPage[n], page)
	}
	return result
}
