package web

import (
	"errors"
	"net/http"
	"scrapbook/handlers"
	"scrapbook/layout"
	"scrapbook/models"
	"scrapbook/utils"

	"github.com/gin-gonic/gin"
)

type AlbumViewRequest struct {
	Width  float64 `form:"width" binding:"gte=0"`
	Height float64 `form:"height" binding:"gte=0"`
}

type AlbumImageRequest struct {
	ElementID uint64 `form:"element_id"`
	Cover     bool   `form:"cover"`
	Thumb     bool   `form:"thumb"`
}

func loadShare(c *gin.Context) *models.AlbumShare {
	share, err := models.AlbumShareLoad(c.Param("token"))
	if errors.Is(err, models.ErrShareExpired) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return nil
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, handlers.DBError1Response)
		return nil
	}
	return &share
}

// AlbumView returns a shared album without any private information
func AlbumView(c *gin.Context) {
	r := AlbumViewRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, handlers.Response{Error: err.Error()})
		return
	}
	share := loadShare(c)
	if share == nil {
		return
	}
	album := &share.Album
	pages := handlers.LoadAlbumPages(album, layout.Size{Width: r.Width, Height: r.Height})
	c.JSON(http.StatusOK, gin.H{
		"title":       album.Title,
		"artist":      album.Artist,
		"description": album.Description,
		"subtitle":    utils.GetDatesString(album.ActivityStart, album.ActivityEnd),
		"has_cover":   album.CoverPath != "",
		"page_count":  pages.PageCount,
		"landscape":   pages.Landscape,
		"pages":       pages.Pages,
		"elements":    pages.Raw,
	})
}

// AlbumImageView serves the cover or an image element of a shared album
func AlbumImageView(c *gin.Context) {
	r := AlbumImageRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, handlers.Response{Error: err.Error()})
		return
	}
	share := loadShare(c)
	if share == nil {
		return
	}
	if r.Cover || r.ElementID == 0 {
		handlers.ServeCover(c, &share.Album, r.Thumb)
		return
	}
	handlers.ServeElementImage(c, share.AlbumID, r.ElementID)
}

func DisallowRobots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /\n")
}
