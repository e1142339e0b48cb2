package editor

import (
	"scrapbook/layout"
	"scrapbook/models"
)

// Element is a page element while it is being edited. Persisted elements keep their
// database ID, new ones get negative temporary IDs until the session is saved.
type Element struct {
	ID   int64              `json:"id"`
	Type models.ElementType `json:"type"`
	layout.Transform
	Resource string `json:"resource"`
	ZIndex   int    `json:"z_index"`
}

func (e *Element) IsNew() bool {
	return e.ID < 0
}

func fromModel(m *models.PageElement) Element {
	return Element{
		ID:        int64(m.ID),
		Type:      m.Type,
		Transform: m.Transform(),
		Resource:  m.Resource,
		ZIndex:    m.ZIndex,
	}
}

func (e *Element) toModel(albumID uint64, page int) models.PageElement {
	m := models.PageElement{
		AlbumID:    albumID,
		Type:       e.Type,
		Resource:   e.Resource,
		ZIndex:     e.ZIndex,
		PageNumber: page,
	}
	if !e.IsNew() {
		m.ID = uint64(e.ID)
	}
	m.SetTransform(e.Transform)
	return m
}

// Gesture is a drag/pinch/rotate result in absolute pixels of the page as rendered by the client
type Gesture struct {
	Position layout.Point `json:"position"`
	Size     float64      `json:"size"`     // element size along the page min dimension
	Rotation float64      `json:"rotation"` // degrees
	Page     layout.Size  `json:"page"`
	Element  layout.Size  `json:"element"` // rendered bounds, used for edge detection
}

// State is a copy of the session state that is safe to hand out
type State struct {
	Token       string            `json:"token"`
	AlbumID     uint64            `json:"album_id"`
	PageCount   int               `json:"page_count"`
	CurrentPage int               `json:"current_page"`
	Landscape   bool              `json:"landscape"`
	Changed     bool              `json:"changed"`
	Pages       map[int][]Element `json:"pages"`
}
