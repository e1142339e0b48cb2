package storage

import (
	"fmt"
	"strings"
)

func albumDir(albumID uint64) string {
	return fmt.Sprintf("album/%d", albumID)
}

func CoverPath(albumID uint64, ext string) string {
	return fmt.Sprintf("%s/album_cover_%d%s", albumDir(albumID), albumID, ext)
}

func CoverThumbPath(albumID uint64) string {
	return fmt.Sprintf("%s/album_cover_%d_thumb.jpg", albumDir(albumID), albumID)
}

func ElementImagePath(albumID, elementID uint64, ext string) string {
	return fmt.Sprintf("%s/image_element_%d%s", albumDir(albumID), elementID, ext)
}

// StagingPath is where uploads of an edit session wait until the session is saved
func StagingPath(session string, seq int, ext string) string {
	return fmt.Sprintf("staging/%s/upload_%d%s", session, seq, ext)
}

func IsStagingPath(path string) bool {
	return strings.HasPrefix(path, "staging/")
}

// BelongsToAlbum is true for paths created by the helpers above for this album
func BelongsToAlbum(path string, albumID uint64) bool {
	return strings.HasPrefix(path, albumDir(albumID)+"/")
}
