package render

import (
	"encoding/json"
	"scrapbook/layout"
	"scrapbook/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage(t *testing.T) {
	elements := []models.PageElement{
		{ID: 3, Type: models.ElementSticker, Resource: "star", ZIndex: 2, OffsetX: 0.5, OffsetY: 0.5, Scale: 0.2},
		{ID: 2, Type: models.ElementText, Resource: "20/#FF00FF00/hi/there", ZIndex: 1},
		{ID: 1, Type: models.ElementImage, Resource: "album/1/image_element_1.png", ZIndex: 2},
		{ID: 4, Type: models.ElementText, Resource: "plain", ZIndex: 0},
	}
	items := Page(elements, layout.Size{Width: 800, Height: 600})
	require.Len(t, items, 4)

	ids := []uint64{}
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []uint64{4, 2, 1, 3}, ids)

	assert.Equal(t, layout.Placement{X: 400, Y: 300, Size: 120}, items[3].Placement)
	assert.Equal(t, "star", items[3].Resource)
	require.NotNil(t, items[1].Text)
	assert.Equal(t, "hi/there", items[1].Text.Text)
	assert.Equal(t, layout.Color(0xFF00FF00), items[1].Text.Color)
	assert.Equal(t, "plain", items[0].Text.Text)
	assert.Equal(t, float64(layout.DefaultFontSize), items[0].Text.FontSize)
}

func TestPages(t *testing.T) {
	elements := []models.PageElement{
		{ID: 1, PageNumber: 1, Type: models.ElementSticker},
		{ID: 2, PageNumber: 3, Type: models.ElementSticker},
	}
	pages := Pages(elements, 3, layout.Size{Width: 100, Height: 100})
	assert.Len(t, pages, 3)
	assert.Len(t, pages[1], 1)
	assert.Empty(t, pages[2])
	assert.Equal(t, uint64(2), pages[3][0].ID)
}

func TestPageEncodesStoredNaNFontSize(t *testing.T) {
	elements := []models.PageElement{{ID: 1, Type: models.ElementText, Resource: "NaN/#FF000000/hi"}}
	items := Page(elements, layout.Size{Width: 100, Height: 100})
	require.Len(t, items, 1)
	assert.Equal(t, float64(layout.DefaultFontSize), items[0].Text.FontSize)
	_, err := json.Marshal(items)
	assert.NoError(t, err)
}
