package handlers

import (
	"log"
	"net/http"
	"scrapbook/db"
	"scrapbook/layout"
	"scrapbook/models"
	"scrapbook/render"
	"scrapbook/storage"
	"scrapbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type AlbumInfo struct {
	ID            uint64 `json:"id"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Description   string `json:"description"`
	Subtitle      string `json:"subtitle"`
	CreatedAt     int64  `json:"created_at"`
	ActivityStart int64  `json:"activity_start"`
	ActivityEnd   int64  `json:"activity_end"`
	Landscape     bool   `json:"landscape"`
	PageCount     int    `json:"page_count"`
	HasCover      bool   `json:"has_cover"`
}

type AlbumIDRequest struct {
	AlbumID uint64 `form:"album_id" binding:"required"`
}

type AlbumCreateRequest struct {
	Title         string `form:"title" binding:"notblank"`
	Artist        string `form:"artist"`
	Description   string `form:"description"`
	ActivityStart int64  `form:"activity_start" binding:"gte=0"`
	ActivityEnd   int64  `form:"activity_end" binding:"gte=0"`
	Landscape     bool   `form:"landscape"`
}

type AlbumSaveRequest struct {
	AlbumIDRequest
	AlbumCreateRequest
}

type AlbumListRequest struct {
	Sort string `form:"sort"`
}

type AlbumPagesRequest struct {
	AlbumIDRequest
	Width  float64 `form:"width" binding:"gte=0"`
	Height float64 `form:"height" binding:"gte=0"`
}

type ElementImageRequest struct {
	AlbumIDRequest
	ElementID uint64 `form:"element_id" binding:"required"`
}

type CoverRequest struct {
	AlbumIDRequest
	Thumb bool   `form:"thumb"`
	Name  string `form:"name"`
}

type AlbumShareRequest struct {
	AlbumIDRequest
	Expires int64 `form:"expires" binding:"gte=0"` // seconds, 0 - never
}

func NewAlbumInfo(a *models.Album) AlbumInfo {
	return AlbumInfo{
		ID:            a.ID,
		Title:         a.Title,
		Artist:        a.Artist,
		Description:   a.Description,
		Subtitle:      utils.GetDatesString(a.ActivityStart, a.ActivityEnd),
		CreatedAt:     a.CreatedAt,
		ActivityStart: a.ActivityStart,
		ActivityEnd:   a.ActivityEnd,
		Landscape:     a.Landscape,
		PageCount:     a.PageCount,
		HasCover:      a.CoverPath != "",
	}
}

func (r *AlbumCreateRequest) apply(a *models.Album) {
	a.Title = r.Title
	a.Artist = r.Artist
	a.Description = r.Description
	a.ActivityStart = r.ActivityStart
	a.ActivityEnd = r.ActivityEnd
}

func AlbumList(c *gin.Context, user *models.User) {
	r := AlbumListRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	albums, err := models.AlbumList(user.ID, models.ParseAlbumSort(r.Sort))
	if err != nil {
		abortWithError(c, err)
		return
	}
	result := make([]AlbumInfo, 0, len(albums))
	for i := range albums {
		result = append(result, NewAlbumInfo(&albums[i]))
	}
	c.JSON(http.StatusOK, result)
}

func AlbumGet(c *gin.Context, user *models.User) {
	r := AlbumIDRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	album, err := models.AlbumLoad(user.ID, r.AlbumID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAlbumInfo(&album))
}

func AlbumCreate(c *gin.Context, user *models.User) {
	r := AlbumCreateRequest{}
	if err := c.ShouldBindWith(&r, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	// Orientation is chosen here once, afterwards it only changes in the editor
	album := models.Album{UserID: user.ID, Landscape: r.Landscape}
	r.apply(&album)
	if err := models.AlbumCreate(&album); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAlbumInfo(&album))
}

func AlbumSave(c *gin.Context, user *models.User) {
	r := AlbumSaveRequest{}
	if err := c.ShouldBindWith(&r, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	album, err := models.AlbumLoad(user.ID, r.AlbumID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	r.apply(&album)
	if err = album.Save(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAlbumInfo(&album))
}

func AlbumDelete(c *gin.Context, user *models.User) {
	r := AlbumIDRequest{}
	if err := c.ShouldBindWith(&r, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if _, err := models.AlbumLoad(user.ID, r.AlbumID); err != nil {
		abortWithError(c, err)
		return
	}
	files, err := models.AlbumFiles(r.AlbumID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err = models.AlbumDelete(user.ID, r.AlbumID); err != nil {
		abortWithError(c, err)
		return
	}
	for _, path := range files {
		if err := storage.Default().Delete(path); err != nil {
			log.Printf("Album %d: cannot delete %s: %v", r.AlbumID, path, err)
		}
	}
	c.JSON(http.StatusOK, OKResponse)
}

// AlbumCoverUpload stores the request body as the album cover
func AlbumCoverUpload(c *gin.Context, user *models.User) {
	r := CoverRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	album, err := models.AlbumLoad(user.ID, r.AlbumID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	path := storage.CoverPath(album.ID, utils.ImageExt(r.Name, c.ContentType()))
	if err = storage.SaveImage(storage.Default(), path, c.Request.Body); err != nil {
		abortWithError(c, err)
		return
	}
	if err = models.AlbumSetCover(album.ID, path); err != nil {
		abortWithError(c, err)
		return
	}
	for _, old := range []string{album.CoverPath, album.CoverThumbPath} {
		if old == "" || old == path {
			continue
		}
		if err := storage.Default().Delete(old); err != nil {
			log.Printf("Album %d: cannot delete %s: %v", album.ID, old, err)
		}
	}
	c.JSON(http.StatusOK, OKResponse)
}

// AlbumCover serves the cover, or its thumbnail when it is ready and thumb=1
func AlbumCover(c *gin.Context, user *models.User) {
	r := CoverRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	album, err := models.AlbumLoad(user.ID, r.AlbumID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ServeCover(c, &album, r.Thumb)
}

func ServeCover(c *gin.Context, album *models.Album, thumb bool) {
	path := album.CoverPath
	if thumb && album.CoverThumbPath != "" {
		path = album.CoverThumbPath
	}
	if path == "" {
		c.JSON(http.StatusNotFound, Response{"no cover"})
		return
	}
	utils.SetCache(c, utils.CacheImage)
	storage.Default().Serve(path, c.Request, c.Writer)
}

type AlbumPagesResponse struct {
	PageCount int                       `json:"page_count"`
	Landscape bool                      `json:"landscape"`
	Pages     map[int][]render.Item     `json:"pages,omitempty"`
	Raw       map[int][]PageElementInfo `json:"elements,omitempty"`
}

type PageElementInfo struct {
	ID       uint64             `json:"id"`
	Type     models.ElementType `json:"type"`
	layout.Transform
	Resource string `json:"resource"`
	ZIndex   int    `json:"z_index"`
}

// AlbumPages returns all pages. With width and height the elements are resolved to pixels
// of a page of that size, otherwise they are returned normalised.
func AlbumPages(c *gin.Context, user *models.User) {
	r := AlbumPagesRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	album, err := models.AlbumLoad(user.ID, r.AlbumID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoadAlbumPages(&album, layout.Size{Width: r.Width, Height: r.Height}))
}

func LoadAlbumPages(album *models.Album, page layout.Size) (result AlbumPagesResponse) {
	result.PageCount = album.PageCount
	result.Landscape = album.Landscape
	elements, err := models.AlbumElements(album.ID)
	if err != nil {
		log.Printf("Album %d: %v", album.ID, err)
		return
	}
	for _, e := range elements {
		result.PageCount = max(result.PageCount, e.PageNumber)
	}
	if !page.IsZero() {
		result.Pages = render.Pages(elements, result.PageCount, page)
		return
	}
	result.Raw = make(map[int][]PageElementInfo, result.PageCount)
	for n := 1; n <= result.PageCount; n++ {
		result.Raw[n] = []PageElementInfo{}
	}
	for _, e := range elements {
		result.Raw[e.PageNumber] = append(result.Raw[e.PageNumber], PageElementInfo{
			ID:        e.ID,
			Type:      e.Type,
			Transform: e.Transform(),
			Resource:  e.Resource,
			ZIndex:    e.ZIndex,
		})
	}
	return
}

func AlbumElementImage(c *gin.Context, user *models.User) {
	r := ElementImageRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if _, err := models.AlbumLoad(user.ID, r.AlbumID); err != nil {
		abortWithError(c, err)
		return
	}
	ServeElementImage(c, r.AlbumID, r.ElementID)
}

func ServeElementImage(c *gin.Context, albumID, elementID uint64) {
	element, err := models.ElementLoad(albumID, elementID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	// Staged uploads stay in place when moving them next to the album failed
	servable := storage.BelongsToAlbum(element.Resource, albumID) || storage.IsStagingPath(element.Resource)
	if element.Type != models.ElementImage || !servable {
		c.JSON(http.StatusNotFound, Response{"no image"})
		return
	}
	utils.SetCache(c, utils.CacheImage)
	storage.Default().Serve(element.Resource, c.Request, c.Writer)
}

// AlbumShare returns a public link to the album, creating it on first use
func AlbumShare(c *gin.Context, user *models.User) {
	r := AlbumShareRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	album, err := models.AlbumLoad(user.ID, r.AlbumID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	shareInfo := models.NewAlbumShare(user.ID, album.ID, r.Expires)
	if r.Expires == 0 {
		// Links without expiration are reused
		existing := models.AlbumShare{}
		result := db.Instance.Where("user_id = ? AND album_id = ? AND expires_at = 0", user.ID, album.ID).Limit(1).Find(&existing)
		if result.Error != nil {
			abortWithError(c, result.Error)
			return
		}
		if existing.ID > 0 {
			shareInfo = existing
		}
	}
	if shareInfo.ID == 0 {
		if err = shareInfo.Create(); err != nil {
			abortWithError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"title":      "[ " + album.Title + " ]",
		"path":       "/w/album/" + shareInfo.Token + "/",
		"expires_at": shareInfo.ExpiresAt,
	})
}
