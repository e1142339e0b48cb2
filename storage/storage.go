package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"scrapbook/config"
)

var ErrNoStorage = errors.New("storage is not initialised")

// StorageAPI is implemented by every place album files can live in. Paths are always
// relative, e.g. "album/12/album_cover_12.jpg".
type StorageAPI interface {
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	Delete(path string) error
	Exists(path string) bool
}

var defaultStorage StorageAPI

// Init creates the configured storage and makes it the default one
func Init() error {
	switch config.STORAGE_TYPE {
	case "file", "":
		defaultStorage = NewDiskStorage(config.STORAGE_PATH)
	case "s3":
		bucket := Bucket{
			Name:     config.S3_BUCKET,
			Region:   config.S3_REGION,
			Endpoint: config.S3_ENDPOINT,
			Path:     config.STORAGE_PATH,
			Key:      config.S3_KEY,
			Secret:   config.S3_SECRET,
		}
		s, err := NewS3Storage(&bucket)
		if err != nil {
			return err
		}
		defaultStorage = s
	default:
		return fmt.Errorf("unknown storage type %q", config.STORAGE_TYPE)
	}
	log.Printf("Storage: %s (%s)", config.STORAGE_TYPE, config.STORAGE_PATH)
	return nil
}

// SetDefault replaces the default storage, mainly for tests
func SetDefault(s StorageAPI) {
	defaultStorage = s
}

func Default() StorageAPI {
	if defaultStorage == nil {
		panic(ErrNoStorage)
	}
	return defaultStorage
}
