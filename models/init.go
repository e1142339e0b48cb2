package models

import (
	"log"
	"scrapbook/config"
	"scrapbook/db"
)

func Init() error {
	return db.Instance.AutoMigrate(&User{}, &Grant{}, &Album{}, &PageElement{}, &AlbumShare{})
}

// SeedAdmin creates the configured admin user on an empty database
func SeedAdmin() error {
	if config.ADMIN_EMAIL == "" || config.ADMIN_PASSWORD == "" {
		return nil
	}
	var count int64
	if err := db.Instance.Model(&User{}).Count(&count).Error; err != nil || count > 0 {
		return err
	}
	_, err := UserCreate("Admin", config.ADMIN_EMAIL, config.ADMIN_PASSWORD, PermissionAdmin, PermissionAlbums)
	if err == nil {
		log.Printf("Created admin user %s", config.ADMIN_EMAIL)
	}
	return err
}
