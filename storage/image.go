package storage

import (
	"bytes"
	"io"
	"log"
	"scrapbook/config"
	"time"

	"github.com/avast/retry-go"
)

// Upper limit for a single uploaded image
const MaxImageSize = 32 << 20

var retryDelay = 200 * time.Millisecond

// ImageSaveError is returned when an image could not be copied into storage
type ImageSaveError struct {
	Path string
	Err  error
}

func (e *ImageSaveError) Error() string {
	return "Failed to save image: " + e.Err.Error()
}

func (e *ImageSaveError) Unwrap() error {
	return e.Err
}

type imageTooLargeError struct{}

func (imageTooLargeError) Error() string { return "image is too large" }

// SaveImage copies an uploaded image into storage. The upload is buffered so the write can be
// retried when the storage fails temporarily.
func SaveImage(s StorageAPI, path string, reader io.Reader) error {
	buf, err := io.ReadAll(io.LimitReader(reader, MaxImageSize+1))
	if err != nil {
		return &ImageSaveError{Path: path, Err: err}
	}
	if len(buf) > MaxImageSize {
		return &ImageSaveError{Path: path, Err: imageTooLargeError{}}
	}
	return saveWithRetry(s, path, buf)
}

// Move copies a file to a new path and removes the original
func Move(s StorageAPI, from, to string) error {
	var buf bytes.Buffer
	if _, err := s.Load(from, &buf); err != nil {
		return &ImageSaveError{Path: to, Err: err}
	}
	if err := saveWithRetry(s, to, buf.Bytes()); err != nil {
		return err
	}
	if err := s.Delete(from); err != nil {
		log.Printf("Move: cannot delete %s: %v", from, err)
	}
	return nil
}

func saveWithRetry(s StorageAPI, path string, buf []byte) error {
	attempts := config.IMAGE_SAVE_ATTEMPTS
	if attempts < 1 {
		attempts = 1
	}
	err := retry.Do(
		func() error {
			_, err := s.Save(path, bytes.NewReader(buf))
			return err
		},
		retry.Attempts(uint(attempts)),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("Saving %s failed (attempt %d): %v", path, n+1, err)
		}),
	)
	if err != nil {
		return &ImageSaveError{Path: path, Err: err}
	}
	return nil
}
