package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"scrapbook/db"
	"scrapbook/editor"
	"scrapbook/handlers"
	"scrapbook/layout"
	"scrapbook/models"
	"scrapbook/storage"
	"strconv"
	"strings"
	"testing"
	"time"

	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
}

func setupServer(t *testing.T) (*client, *storage.DiskStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, db.InitSQLite("file::memory:"))
	t.Cleanup(db.Close)
	require.NoError(t, models.Init())
	store := storage.NewDiskStorage(t.TempDir())
	storage.SetDefault(store)
	handlers.Init()
	handlers.Editors = editor.NewRegistry(time.Hour, store)
	_, err := models.UserCreate("Alice", "alice@example.com", "secret", models.PermissionAlbums)
	require.NoError(t, err)

	c := &client{t: t, router: newRouter(gormsessions.NewStore(db.Instance, false, []byte("test key")))}
	w := c.form(http.MethodPost, "/user/login", url.Values{"email": {"alice@example.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c.cookies = w.Result().Cookies()
	require.NotEmpty(t, c.cookies)
	return c, store
}

func (c *client) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *client) form(method, target string, values url.Values) *httptest.ResponseRecorder {
	return c.do(method, target, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

func (c *client) json(target string, body any, out any) *httptest.ResponseRecorder {
	c.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(c.t, err)
	w := c.do(http.MethodPost, target, bytes.NewReader(data), "application/json")
	if out != nil && w.Code == http.StatusOK {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) (result T) {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return
}

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 20))))
	return buf.Bytes()
}

func TestAccessDenied(t *testing.T) {
	c, _ := setupServer(t)
	c.cookies = nil
	w := c.do(http.MethodGet, "/album/list", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.form(http.MethodPost, "/user/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	c, _ := setupServer(t)
	w := c.form(http.MethodPost, "/user/save", url.Values{"name": {"Bob"}, "email": {"bob@example.com"}, "password": {"x"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateUserRejectsLongPassword(t *testing.T) {
	c, _ := setupServer(t)
	_, err := models.UserCreate("Admin", "admin@example.com", "admin", models.PermissionAdmin)
	require.NoError(t, err)
	w := c.form(http.MethodPost, "/user/login", url.Values{"email": {"admin@example.com"}, "password": {"admin"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c.cookies = w.Result().Cookies()

	long := strings.Repeat("p", 100)
	w = c.form(http.MethodPost, "/user/save", url.Values{"name": {"Bob"}, "email": {"bob@example.com"}, "password": {long}})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	var count int64
	require.NoError(t, db.Instance.Model(&models.User{}).Where("email = ?", "bob@example.com").Count(&count).Error)
	assert.Zero(t, count, "no user is left behind")

	w = c.form(http.MethodPost, "/user/save", url.Values{"name": {"Bob"}, "email": {"bob@example.com"}, "password": {"short"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, ok := models.UserLogin("bob@example.com", "short")
	assert.True(t, ok)
}

func TestCreateAlbumBlankTitle(t *testing.T) {
	c, _ := setupServer(t)
	for _, title := range []string{"", "   "} {
		w := c.form(http.MethodPost, "/album/create", url.Values{"title": {title}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	}
	list := decode[[]handlers.AlbumInfo](t, c.do(http.MethodGet, "/album/list", nil, ""))
	assert.Empty(t, list)
}

func TestAlbumLifecycle(t *testing.T) {
	c, store := setupServer(t)
	for _, title := range []string{"Zoo", "aquarium", "Museum"} {
		w := c.form(http.MethodPost, "/album/create", url.Values{"title": {title}, "artist": {"Alice"}, "activity_start": {"1719835200"}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	list := decode[[]handlers.AlbumInfo](t, c.do(http.MethodGet, "/album/list?sort=title", nil, ""))
	require.Len(t, list, 3)
	assert.Equal(t, "aquarium", list[0].Title)
	assert.Equal(t, "Museum", list[1].Title)
	assert.Equal(t, "1 Jul 2024", list[0].Subtitle)

	id := strconv.FormatUint(list[2].ID, 10)
	w := c.form(http.MethodPost, "/album/save", url.Values{"album_id": {id}, "title": {"Zoo 2024"}, "landscape": {"true"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info := decode[handlers.AlbumInfo](t, c.do(http.MethodGet, "/album/get?album_id="+id, nil, ""))
	assert.Equal(t, "Zoo 2024", info.Title)
	assert.False(t, info.Landscape, "orientation is not an album detail")
	assert.False(t, info.HasCover)

	w = c.do(http.MethodPut, "/album/cover?album_id="+id+"&name=cover.png", bytes.NewReader(pngBytes(t)), "image/png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	coverPath := storage.CoverPath(list[2].ID, ".png")
	assert.True(t, store.Exists(coverPath))
	w = c.do(http.MethodGet, "/album/cover?album_id="+id, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes(t), w.Body.Bytes())

	// A cover with another extension replaces the previous file
	w = c.do(http.MethodPut, "/album/cover?album_id="+id+"&name=cover.jpg", bytes.NewReader(pngBytes(t)), "image/jpeg")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, store.Exists(coverPath))
	coverPath = storage.CoverPath(list[2].ID, ".jpg")
	assert.True(t, store.Exists(coverPath))

	w = c.form(http.MethodPost, "/album/delete", url.Values{"album_id": {id}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, store.Exists(coverPath))
	w = c.do(http.MethodGet, "/album/get?album_id="+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditorFlow(t *testing.T) {
	c, store := setupServer(t)
	album := decode[handlers.AlbumInfo](t, c.form(http.MethodPost, "/album/create", url.Values{"title": {"Trip"}}))

	state := editor.State{}
	w := c.json("/editor/open", gin.H{"album_id": album.ID}, &state)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := state.Token
	require.NotEmpty(t, token)
	assert.Equal(t, 1, state.PageCount)

	sticker := editor.Element{}
	w = c.json("/editor/element/add", gin.H{
		"token":   token,
		"page":    1,
		"element": gin.H{"type": "STICKER", "resource": "heart", "offset_x": 0.1, "offset_y": 0.1, "scale": 0.2},
	}, &sticker)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(-1), sticker.ID)

	w = c.json("/editor/element/add", gin.H{"token": token, "page": 1, "element": gin.H{"type": "TEXT_FIELD", "resource": "no style"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	moved := handlers.EditorTransformResponse{}
	w = c.json("/editor/element/transform", gin.H{
		"token": token, "page": 1, "id": sticker.ID,
		"gesture": gin.H{"position": gin.H{"x": 500, "y": 1000}, "size": 100, "rotation": 30, "page": gin.H{"width": 1000, "height": 2000}},
	}, &moved)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.InDelta(t, 0.5, moved.Element.OffsetX, 1e-9)
	assert.InDelta(t, 0.5, moved.Element.OffsetY, 1e-9)
	assert.Equal(t, layout.EdgeInside, moved.Edge)

	photo := editor.Element{}
	w = c.json("/editor/element/add", gin.H{"token": token, "page": 1, "element": gin.H{"type": "IMAGE", "scale": 0.5}}, &photo)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	target := "/editor/element/image?token=" + token + "&page=1&id=" + strconv.FormatInt(photo.ID, 10) + "&name=photo.png"
	w = c.do(http.MethodPut, target, bytes.NewReader(pngBytes(t)), "image/png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.json("/editor/page/add", gin.H{"token": token}, &state)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, state.PageCount)

	saved := handlers.EditorSaveResponse{}
	w = c.json("/editor/save", gin.H{"token": token}, &saved)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, saved.IDs, 2)
	imageID := saved.IDs[photo.ID]
	assert.True(t, store.Exists(storage.ElementImagePath(album.ID, imageID, ".png")))
	assert.False(t, saved.State.Changed)

	albumID := strconv.FormatUint(album.ID, 10)
	w = c.do(http.MethodGet, "/album/element/image?album_id="+albumID+"&element_id="+strconv.FormatUint(imageID, 10), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	pages := decode[handlers.AlbumPagesResponse](t, c.do(http.MethodGet, "/album/pages?album_id="+albumID+"&width=800&height=600", nil, ""))
	assert.Equal(t, 2, pages.PageCount)
	require.Len(t, pages.Pages[1], 2)
	assert.Equal(t, 400.0, pages.Pages[1][0].Placement.X)
	assert.Equal(t, 60.0, pages.Pages[1][0].Placement.Size)
	assert.Empty(t, pages.Pages[2])

	w = c.json("/editor/close", gin.H{"token": token}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodGet, "/editor/state?token="+token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicShare(t *testing.T) {
	c, _ := setupServer(t)
	album := decode[handlers.AlbumInfo](t, c.form(http.MethodPost, "/album/create", url.Values{"title": {"Shared"}}))
	albumID := strconv.FormatUint(album.ID, 10)

	share := decode[map[string]any](t, c.do(http.MethodGet, "/album/share?album_id="+albumID, nil, ""))
	path := share["path"].(string)
	again := decode[map[string]any](t, c.do(http.MethodGet, "/album/share?album_id="+albumID, nil, ""))
	assert.Equal(t, path, again["path"], "links without expiration are reused")

	c.cookies = nil
	view := decode[map[string]any](t, c.do(http.MethodGet, path, nil, ""))
	assert.Equal(t, "Shared", view["title"])
	assert.EqualValues(t, 1, view["page_count"])

	w := c.do(http.MethodGet, "/w/album/unknown/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenameKeepsOrientation(t *testing.T) {
	c, _ := setupServer(t)
	album := decode[handlers.AlbumInfo](t, c.form(http.MethodPost, "/album/create", url.Values{"title": {"Trip"}}))
	albumID := strconv.FormatUint(album.ID, 10)

	state := editor.State{}
	require.Equal(t, http.StatusOK, c.json("/editor/open", gin.H{"album_id": album.ID}, &state).Code)
	w := c.json("/editor/element/add", gin.H{
		"token":   state.Token,
		"page":    1,
		"element": gin.H{"type": "STICKER", "resource": "heart", "offset_x": 0.1, "offset_y": 0.7, "scale": 0.2},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, http.StatusOK, c.json("/editor/orientation", gin.H{"token": state.Token}, nil).Code)
	require.Equal(t, http.StatusOK, c.json("/editor/save", gin.H{"token": state.Token}, nil).Code)

	w = c.form(http.MethodPost, "/album/save", url.Values{"album_id": {albumID}, "title": {"Trip renamed"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	pages := decode[handlers.AlbumPagesResponse](t, c.do(http.MethodGet, "/album/pages?album_id="+albumID, nil, ""))
	assert.True(t, pages.Landscape)
	require.Len(t, pages.Raw[1], 1)
	assert.Equal(t, 0.7, pages.Raw[1][0].OffsetX)
	assert.Equal(t, 0.1, pages.Raw[1][0].OffsetY)

	landscape := decode[handlers.AlbumInfo](t, c.form(http.MethodPost, "/album/create", url.Values{"title": {"Wide"}, "landscape": {"true"}}))
	assert.True(t, landscape.Landscape, "orientation can be chosen when creating")
}
