package utils

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
)

// GetDatesString formats an activity period, e.g. "2 Jan 2006 - 5 Jan 2006".
// A missing end shows only the start and a missing start shows nothing.
func GetDatesString(min, max int64) string {
	if min == 0 {
		return ""
	}
	minString := time.Unix(min, 0).UTC().Format("2 Jan 2006")
	if max == 0 || max-min < 86400 {
		return minString
	}
	maxString := time.Unix(max, 0).UTC().Format("2 Jan 2006")
	return minString + " - " + maxString
}

// ImageExt returns a safe lowercase extension for an uploaded image, defaulting to .png
func ImageExt(fileName, mimeType string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg":
		return ".jpg"
	case ".png":
		return ".png"
	case ".gif":
		return ".gif"
	case ".webp":
		return ".webp"
	}
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".png"
}

const thumbQuality = 90

// Thumb describes a thumbnail written by CreateThumb
type Thumb struct {
	Source image.Point // original dimensions
	Size   image.Point
	Bytes  int64
}

// CreateThumb encodes a JPEG that fits into maxSize x maxSize. Smaller images keep their size.
func CreateThumb(maxSize uint, reader io.Reader, writer io.Writer) (Thumb, error) {
	src, _, err := image.Decode(reader)
	if err != nil {
		return Thumb{}, err
	}
	dst := resize.Thumbnail(maxSize, maxSize, src, resize.Lanczos3)
	encoded := bytes.Buffer{}
	if err = jpeg.Encode(&encoded, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return Thumb{}, err
	}
	thumb := Thumb{Source: src.Bounds().Size(), Size: dst.Bounds().Size()}
	thumb.Bytes, err = io.Copy(writer, &encoded)
	return thumb, err
}
