package handlers

import (
	"errors"
	"log"
	"net/http"
	"scrapbook/editor"
	"scrapbook/layout"
	"scrapbook/models"
	"scrapbook/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type Response struct {
	Error string `json:"error"`
}

var (
	// Predefined errors
	OKResponse       = Response{}
	DBError1Response = Response{"DB Error 1"}
	DBError2Response = Response{"DB Error 2"}
	DBError3Response = Response{"DB Error 3"}
)

// Init registers the custom binding validators
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			log.Printf("Cannot register notblank validator: %v", err)
		}
	}
}

// abortWithError maps domain errors to a status code, anything unknown is a DB error
func abortWithError(c *gin.Context, err error) {
	var saveErr *storage.ImageSaveError
	switch {
	case errors.As(err, &saveErr):
		log.Printf("Image save error: %v", err)
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
	case errors.Is(err, models.ErrInvalidTitle),
		errors.Is(err, editor.ErrPageNotFound),
		errors.Is(err, editor.ErrLastPage),
		errors.Is(err, editor.ErrInvalidTransform),
		errors.Is(err, editor.ErrInvalidResource),
		errors.Is(err, editor.ErrNotImage),
		errors.Is(err, layout.ErrBadTextResource),
		errors.Is(err, layout.ErrBadColor):
		c.JSON(http.StatusBadRequest, Response{err.Error()})
	case errors.Is(err, models.ErrAlbumNotFound),
		errors.Is(err, models.ErrElementNotFound),
		errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, editor.ErrElementNotFound):
		c.JSON(http.StatusNotFound, Response{err.Error()})
	default:
		log.Printf("DB error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
	}
}
