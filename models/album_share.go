package models

import (
	"errors"
	"scrapbook/db"
	"scrapbook/utils"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrShareExpired = errors.New("share link is not valid")

type AlbumShare struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64
	UserID    uint64 `gorm:"not null"`
	User      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AlbumID   uint64 `gorm:"not null"`
	Album     Album  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Token     string `gorm:"type:varchar(100);index:uniq_token,unique"`
	ExpiresAt int64  `gorm:"not null"` // 0 indicates no expiration
}

func NewAlbumShare(userID, albumID uint64, expires int64) AlbumShare {
	expiresAt := int64(0)
	if expires > 0 {
		expiresAt = time.Now().Unix() + expires
	}
	return AlbumShare{
		UserID:    userID,
		AlbumID:   albumID,
		Token:     utils.Rand16BytesToBase62(),
		ExpiresAt: expiresAt,
	}
}

func (s *AlbumShare) Create() error {
	return db.Instance.Omit(clause.Associations).Create(s).Error
}

func (s *AlbumShare) Expired(now int64) bool {
	return s.ExpiresAt > 0 && s.ExpiresAt <= now
}

// AlbumShareLoad finds a share by token together with its album
func AlbumShareLoad(token string) (share AlbumShare, err error) {
	err = db.Instance.Preload("Album").Where("token = ?", token).First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return share, ErrShareExpired
	}
	if err == nil && share.Expired(time.Now().Unix()) {
		err = ErrShareExpired
	}
	return
}
