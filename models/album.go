package models

import (
	"errors"
	"scrapbook/db"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidTitle  = errors.New("album title cannot be empty")
	ErrAlbumNotFound = errors.New("album not found")
)

type Album struct {
	ID             uint64 `gorm:"primaryKey"`
	UserID         uint64 `gorm:"not null;index:user_album_created,priority:1;"`
	User           User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt      int64  `gorm:"index:user_album_created,priority:2"`
	UpdatedAt      int64
	Title          string `gorm:"type:varchar(300);not null"`
	Artist         string `gorm:"type:varchar(300)"`
	Description    string `gorm:"type:text"`
	CoverPath      string `gorm:"type:varchar(500)"`
	CoverThumbPath string `gorm:"type:varchar(500)"`
	ActivityStart  int64  `gorm:"not null;default:0"` // unix, 0 - not set
	ActivityEnd    int64  `gorm:"not null;default:0"`
	Landscape      bool   `gorm:"not null;default:false"`
	PageCount      int    `gorm:"not null;default:1"`
}

// AlbumSort is one of the supported album list orderings
type AlbumSort string

const (
	SortCreated AlbumSort = "created"
	SortBegin   AlbumSort = "begin"
	SortEnd     AlbumSort = "end"
	SortTitle   AlbumSort = "title"
)

var albumOrder = map[AlbumSort]string{
	SortCreated: "created_at ASC, id ASC",
	SortBegin:   "activity_start ASC, id ASC",
	SortEnd:     "activity_end ASC, id ASC",
	SortTitle:   "LOWER(title) ASC, id ASC",
}

// ParseAlbumSort falls back to SortCreated for unknown keys
func ParseAlbumSort(s string) AlbumSort {
	sort := AlbumSort(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := albumOrder[sort]; ok {
		return sort
	}
	return SortCreated
}

func (a *Album) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrInvalidTitle
	}
	return nil
}

func AlbumCreate(a *Album) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.PageCount < 1 {
		a.PageCount = 1
	}
	return db.Instance.Omit(clause.Associations).Create(a).Error
}

// Save updates the album details. Orientation is written by the editor, see AlbumSetLayout.
func (a *Album) Save() error {
	if err := a.Validate(); err != nil {
		return err
	}
	return db.Instance.Model(a).Updates(map[string]any{
		"title":          a.Title,
		"artist":         a.Artist,
		"description":    a.Description,
		"activity_start": a.ActivityStart,
		"activity_end":   a.ActivityEnd,
	}).Error
}

// AlbumLoad returns the album only if it belongs to userID
func AlbumLoad(userID, id uint64) (a Album, err error) {
	err = db.Instance.Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrAlbumNotFound
	}
	return
}

func AlbumList(userID uint64, sort AlbumSort) (albums []Album, err error) {
	order, ok := albumOrder[sort]
	if !ok {
		order = albumOrder[SortCreated]
	}
	err = db.Instance.Where("user_id = ?", userID).Order(order).Find(&albums).Error
	return
}

// AlbumDelete removes the album, page elements and shares go with it (cascade)
func AlbumDelete(userID, id uint64) error {
	result := db.Instance.Where("id = ? AND user_id = ?", id, userID).Delete(&Album{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

func AlbumTitle(albumID uint64) (title string, err error) {
	err = db.Instance.Model(&Album{}).Select("title").Where("id = ?", albumID).Scan(&title).Error
	return
}

// AlbumFiles lists every stored file that belongs to the album
func AlbumFiles(albumID uint64) (files []string, err error) {
	a := Album{}
	if err = db.Instance.Select("cover_path", "cover_thumb_path").First(&a, albumID).Error; err != nil {
		return
	}
	if err = db.Instance.Model(&PageElement{}).
		Where("album_id = ? AND type = ? AND resource != ''", albumID, ElementImage).
		Pluck("resource", &files).Error; err != nil {
		return
	}
	for _, path := range []string{a.CoverPath, a.CoverThumbPath} {
		if path != "" {
			files = append(files, path)
		}
	}
	return
}

// AlbumSetLayout updates orientation and page count as part of an editor save
func AlbumSetLayout(tx *gorm.DB, albumID uint64, landscape bool, pageCount int) error {
	return tx.Model(&Album{ID: albumID}).Updates(map[string]any{
		"landscape":  landscape,
		"page_count": pageCount,
	}).Error
}

func AlbumSetCover(albumID uint64, path string) error {
	return db.Instance.Model(&Album{ID: albumID}).Updates(map[string]any{
		"cover_path":       path,
		"cover_thumb_path": "",
	}).Error
}

// AlbumSetCoverThumb sets the thumbnail only if the cover was not replaced in the meantime
func AlbumSetCoverThumb(albumID uint64, coverPath, thumbPath string) (updated bool, err error) {
	result := db.Instance.Model(&Album{ID: albumID}).Where("cover_path = ?", coverPath).Update("cover_thumb_path", thumbPath)
	return result.RowsAffected > 0, result.Error
}

// AlbumsMissingThumbs returns up to limit albums with a cover but without a thumbnail
func AlbumsMissingThumbs(limit int, skip []uint64) (albums []Album, err error) {
	tx := db.Instance.Where("cover_path != '' AND cover_thumb_path = ''")
	if len(skip) > 0 {
		tx = tx.Where("id NOT IN ?", skip)
	}
	err = tx.Order("id").Limit(limit).Find(&albums).Error
	return
}
