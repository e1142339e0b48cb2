package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func TestGetDatesString(t *testing.T) {
	day := func(y int, m time.Month, d int) int64 {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Unix()
	}
	tests := []struct {
		name     string
		min, max int64
		want     string
	}{
		{"unset", 0, 0, ""},
		{"start only", day(2024, 7, 1), 0, "1 Jul 2024"},
		{"same day", day(2024, 7, 1), day(2024, 7, 1) + 3600, "1 Jul 2024"},
		{"range", day(2024, 7, 1), day(2024, 7, 14), "1 Jul 2024 - 14 Jul 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetDatesString(tt.min, tt.max); got != tt.want {
				t.Errorf("GetDatesString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageExt(t *testing.T) {
	tests := []struct {
		name, mime, want string
	}{
		{"IMG_001.JPEG", "", ".jpg"},
		{"sticker.png", "image/jpeg", ".png"},
		{"blob", "image/jpeg", ".jpg"},
		{"../../etc/passwd", "", ".png"},
	}
	for _, tt := range tests {
		if got := ImageExt(tt.name, tt.mime); got != tt.want {
			t.Errorf("ImageExt(%q, %q) = %q, want %q", tt.name, tt.mime, got, tt.want)
		}
	}
}

func TestCreateThumb(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	img.Set(10, 10, color.RGBA{R: 255, A: 255})
	var in, out bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		t.Fatal(err)
	}
	result, err := CreateThumb(100, &in, &out)
	if err != nil {
		t.Fatalf("CreateThumb() error = %v", err)
	}
	if result.Size != image.Pt(100, 50) || result.Source != image.Pt(400, 200) {
		t.Errorf("CreateThumb() = %+v", result)
	}
	if result.Bytes != int64(out.Len()) || out.Len() == 0 {
		t.Errorf("Bytes %d, written %d", result.Bytes, out.Len())
	}

	// Small images are not enlarged
	in.Reset()
	out.Reset()
	if err := png.Encode(&in, image.NewRGBA(image.Rect(0, 0, 30, 20))); err != nil {
		t.Fatal(err)
	}
	if result, err = CreateThumb(100, &in, &out); err != nil || result.Size != image.Pt(30, 20) {
		t.Errorf("CreateThumb() = %+v, %v", result, err)
	}
}
