package handlers

import (
	"net/http"
	"scrapbook/editor"
	"scrapbook/layout"
	"scrapbook/models"
	"scrapbook/utils"

	"github.com/gin-gonic/gin"
)

// Editors keeps the open edit sessions, set up in main
var Editors *editor.Registry

type EditorOpenRequest struct {
	AlbumID uint64 `json:"album_id" binding:"required"`
}

type EditorRequest struct {
	Token string `json:"token" form:"token" binding:"required"`
}

type EditorPageRequest struct {
	EditorRequest
	Page int `json:"page" form:"page" binding:"required,gte=1"`
}

type EditorElementRequest struct {
	EditorPageRequest
	Element editor.Element `json:"element"`
}

type EditorElementIDRequest struct {
	EditorPageRequest
	ID int64 `json:"id" form:"id" binding:"required"`
}

type EditorTransformRequest struct {
	EditorElementIDRequest
	Gesture editor.Gesture `json:"gesture"`
}

type EditorRestoreRequest struct {
	EditorElementIDRequest
	PageSize    layout.Size `json:"page_size"`
	ElementSize layout.Size `json:"element_size"`
}

type EditorImageRequest struct {
	EditorElementIDRequest
	Name string `form:"name"`
}

type EditorTransformResponse struct {
	Element editor.Element `json:"element"`
	Edge    layout.Edge    `json:"edge"`
}

type EditorSaveResponse struct {
	IDs   map[int64]uint64 `json:"ids"`
	State editor.State     `json:"state"`
}

func loadEditor(c *gin.Context, user *models.User, token string) *editor.Session {
	s, err := Editors.Get(token, user.ID)
	if err != nil {
		abortWithError(c, err)
		return nil
	}
	return s
}

func (r EditorRequest) token() string {
	return r.Token
}

type editorRequest interface {
	token() string
}

// bindEditor binds the JSON body and loads the edit session it refers to
func bindEditor(c *gin.Context, user *models.User, r editorRequest) *editor.Session {
	if err := c.ShouldBindJSON(r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return nil
	}
	return loadEditor(c, user, r.token())
}

func EditorOpen(c *gin.Context, user *models.User) {
	r := EditorOpenRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	s, err := Editors.Open(user.ID, r.AlbumID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.State())
}

func EditorState(c *gin.Context, user *models.User) {
	r := EditorRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if s := loadEditor(c, user, r.Token); s != nil {
		c.JSON(http.StatusOK, s.State())
	}
}

func EditorAddPage(c *gin.Context, user *models.User) {
	r := EditorRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	s.AddPage()
	c.JSON(http.StatusOK, s.State())
}

func EditorDeletePage(c *gin.Context, user *models.User) {
	r := EditorPageRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	if err := s.DeletePage(r.Page); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.State())
}

func EditorCurrentPage(c *gin.Context, user *models.User) {
	r := EditorPageRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	if err := s.SetCurrentPage(r.Page); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

func EditorAddElement(c *gin.Context, user *models.User) {
	r := EditorElementRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	e, err := s.AddElement(r.Page, r.Element)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func EditorUpdateElement(c *gin.Context, user *models.User) {
	r := EditorElementRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	e, err := s.UpdateElement(r.Page, r.Element)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func EditorTransform(c *gin.Context, user *models.User) {
	r := EditorTransformRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	e, edge, err := s.Transform(r.Page, r.ID, r.Gesture)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, EditorTransformResponse{Element: e, Edge: edge})
}

func EditorDeleteElement(c *gin.Context, user *models.User) {
	r := EditorElementIDRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	if err := s.DeleteElement(r.Page, r.ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

// EditorRestoreElement is called when the user cancels deleting an element dragged onto the border
func EditorRestoreElement(c *gin.Context, user *models.User) {
	r := EditorRestoreRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	e, err := s.CancelDelete(r.Page, r.ID, r.PageSize, r.ElementSize)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// EditorElementImage stores the request body as the picture of an image element
func EditorElementImage(c *gin.Context, user *models.User) {
	r := EditorImageRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	s := loadEditor(c, user, r.Token)
	if s == nil {
		return
	}
	e, err := s.StageImage(r.Page, r.ID, c.Request.Body, utils.ImageExt(r.Name, c.ContentType()))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func EditorOrientation(c *gin.Context, user *models.User) {
	r := EditorRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	landscape := s.ToggleOrientation()
	c.JSON(http.StatusOK, gin.H{"error": "", "landscape": landscape})
}

func EditorSave(c *gin.Context, user *models.User) {
	r := EditorRequest{}
	s := bindEditor(c, user, &r)
	if s == nil {
		return
	}
	ids, err := s.Save(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, EditorSaveResponse{IDs: ids, State: s.State()})
}

// EditorClose drops the session, unsaved changes are lost
func EditorClose(c *gin.Context, user *models.User) {
	r := EditorRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if err := Editors.Close(r.Token, user.ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}
