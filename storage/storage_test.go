package storage

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	retryDelay = 0
}

func TestDiskStorage(t *testing.T) {
	s := NewDiskStorage(t.TempDir())
	path := ElementImagePath(3, 42, ".png")
	n, err := s.Save(path, strings.NewReader("image bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
	assert.True(t, s.Exists(path))

	var buf bytes.Buffer
	_, err = s.Load(path, &buf)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", buf.String())

	w := httptest.NewRecorder()
	s.Serve(path, httptest.NewRequest(http.MethodGet, "/", nil), w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image bytes", w.Body.String())

	require.NoError(t, s.Delete(path))
	assert.False(t, s.Exists(path))
}

func TestDiskStorageStaysInBase(t *testing.T) {
	base := t.TempDir()
	s := NewDiskStorage(base)
	assert.True(t, strings.HasPrefix(s.getFullPath("../../etc/passwd"), base))
}

// flakyStorage fails the first `failures` saves
type flakyStorage struct {
	*DiskStorage
	failures int
	calls    int
}

func (f *flakyStorage) Save(path string, reader io.Reader) (int64, error) {
	f.calls++
	if f.calls <= f.failures {
		io.Copy(io.Discard, reader)
		return 0, errors.New("disk hiccup")
	}
	return f.DiskStorage.Save(path, reader)
}

func TestSaveImageRetries(t *testing.T) {
	s := &flakyStorage{DiskStorage: NewDiskStorage(t.TempDir()), failures: 2}
	require.NoError(t, SaveImage(s, "a/b.png", strings.NewReader("png")))
	assert.Equal(t, 3, s.calls)
	assert.True(t, s.Exists("a/b.png"))
}

func TestSaveImageError(t *testing.T) {
	s := &flakyStorage{DiskStorage: NewDiskStorage(t.TempDir()), failures: 100}
	err := SaveImage(s, "a/b.png", strings.NewReader("png"))
	var saveErr *ImageSaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, "Failed to save image: disk hiccup", err.Error())
	assert.Equal(t, "a/b.png", saveErr.Path)
}

func TestMove(t *testing.T) {
	s := NewDiskStorage(t.TempDir())
	from := StagingPath("token", 2, ".jpg")
	to := ElementImagePath(1, 7, ".jpg")
	_, err := s.Save(from, strings.NewReader("jpg"))
	require.NoError(t, err)
	require.NoError(t, Move(s, from, to))
	assert.False(t, s.Exists(from))
	assert.True(t, s.Exists(to))

	var saveErr *ImageSaveError
	assert.ErrorAs(t, Move(s, from, to), &saveErr)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "album/5/album_cover_5.jpg", CoverPath(5, ".jpg"))
	assert.Equal(t, "album/5/album_cover_5_thumb.jpg", CoverThumbPath(5))
	assert.Equal(t, "album/5/image_element_9.png", ElementImagePath(5, 9, ".png"))
	assert.Equal(t, "staging/abc/upload_3.png", StagingPath("abc", 3, ".png"))
	assert.True(t, IsStagingPath(StagingPath("abc", 1, "")))
	assert.True(t, BelongsToAlbum("album/5/image_element_9.png", 5))
	assert.False(t, BelongsToAlbum("album/51/image_element_9.png", 5))
}

func TestBucketRemotePath(t *testing.T) {
	b := Bucket{Path: "/scrapbook/"}
	assert.Equal(t, "scrapbook/album/1/x.png", b.GetRemotePath("album/1/x.png"))
	b.Path = ""
	assert.Equal(t, "album/1/x.png", b.GetRemotePath("/album/1/x.png"))
}
