package processing

import (
	"bytes"
	"fmt"
	"scrapbook/config"
	"scrapbook/models"
	"scrapbook/storage"
	"scrapbook/utils"
)

const coverThumbTask = "cover_thumb"

type coverThumb struct{}

func (t *coverThumb) getName() string {
	return coverThumbTask
}

func (t *coverThumb) shouldHandle(album *models.Album) bool {
	return album.CoverPath != "" && album.CoverThumbPath == ""
}

func (t *coverThumb) process(album *models.Album, store storage.StorageAPI) error {
	cover := bytes.Buffer{}
	if _, err := store.Load(album.CoverPath, &cover); err != nil {
		return fmt.Errorf("cannot load cover %s: %w", album.CoverPath, err)
	}
	thumb := bytes.Buffer{}
	if _, err := utils.CreateThumb(uint(config.THUMB_SIZE), &cover, &thumb); err != nil {
		return fmt.Errorf("cannot create thumbnail: %w", err)
	}
	path := storage.CoverThumbPath(album.ID)
	if err := storage.SaveImage(store, path, &thumb); err != nil {
		return err
	}
	updated, err := models.AlbumSetCoverThumb(album.ID, album.CoverPath, path)
	if err != nil {
		return err
	}
	if updated {
		album.CoverThumbPath = path
	}
	return nil
}
