package models

import (
	"errors"
	"scrapbook/db"
	"scrapbook/layout"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ElementType string

const (
	ElementSticker ElementType = "STICKER"
	ElementImage   ElementType = "IMAGE"
	ElementText    ElementType = "TEXT_FIELD"
	ElementDefault ElementType = "DEFAULT"
)

var ErrElementNotFound = errors.New("page element not found")

// ParseElementType is case insensitive, unknown types are treated as stickers
func ParseElementType(s string) ElementType {
	switch t := ElementType(strings.ToUpper(strings.TrimSpace(s))); t {
	case ElementSticker, ElementImage, ElementText, ElementDefault:
		return t
	}
	return ElementSticker
}

// PageElement is a single item placed on an album page. Offsets and scale are stored
// normalised, see package layout.
type PageElement struct {
	ID         uint64      `gorm:"primaryKey"`
	AlbumID    uint64      `gorm:"not null;index:album_page,priority:1"`
	Album      Album       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Type       ElementType `gorm:"type:varchar(20);not null"`
	OffsetX    float64     `gorm:"not null;default:0"`
	OffsetY    float64     `gorm:"not null;default:0"`
	Scale      float64     `gorm:"not null;default:0"`
	Rotation   float64     `gorm:"not null;default:0"`
	Resource   string      `gorm:"type:text"`
	ZIndex     int         `gorm:"not null;default:0"`
	PageNumber int         `gorm:"not null;index:album_page,priority:2"`
}

func (e *PageElement) Transform() layout.Transform {
	return layout.Transform{OffsetX: e.OffsetX, OffsetY: e.OffsetY, Scale: e.Scale, Rotation: e.Rotation}
}

func (e *PageElement) SetTransform(t layout.Transform) {
	e.OffsetX = t.OffsetX
	e.OffsetY = t.OffsetY
	e.Scale = t.Scale
	e.Rotation = t.Rotation
}

// AlbumElements returns all elements of the album in page, paint order
func AlbumElements(albumID uint64) (elements []PageElement, err error) {
	err = db.Instance.Where("album_id = ?", albumID).Order("page_number, z_index, id").Find(&elements).Error
	return
}

// PageElements returns the elements of a single page in paint order
func PageElements(albumID uint64, page int) (elements []PageElement, err error) {
	err = db.Instance.Where("album_id = ? AND page_number = ?", albumID, page).Order("z_index, id").Find(&elements).Error
	return
}

func ElementLoad(albumID, id uint64) (e PageElement, err error) {
	err = db.Instance.Where("id = ? AND album_id = ?", id, albumID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrElementNotFound
	}
	return
}

func ElementSetResource(tx *gorm.DB, albumID, id uint64, resource string) error {
	return tx.Model(&PageElement{ID: id}).Where("album_id = ?", albumID).Update("resource", resource).Error
}

// ElementsUpsert inserts elements without an ID and updates the rest, IDs are filled in place
func ElementsUpsert(tx *gorm.DB, elements []PageElement) error {
	for i := range elements {
		e := &elements[i]
		if e.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(e).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Model(e).Where("album_id = ?", e.AlbumID).Updates(elementColumns(e)).Error; err != nil {
			return err
		}
	}
	return nil
}

// ElementsDelete removes the given elements of the album, unknown IDs are ignored
func ElementsDelete(tx *gorm.DB, albumID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("album_id = ? AND id IN ?", albumID, ids).Delete(&PageElement{}).Error
}

func elementColumns(e *PageElement) map[string]any {
	return map[string]any{
		"type":        e.Type,
		"offset_x":    e.OffsetX,
		"offset_y":    e.OffsetY,
		"scale":       e.Scale,
		"rotation":    e.Rotation,
		"resource":    e.Resource,
		"z_index":     e.ZIndex,
		"page_number": e.PageNumber,
	}
}
