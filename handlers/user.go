package handlers

import (
	"errors"
	"net/http"
	"scrapbook/auth"
	"scrapbook/db"
	"scrapbook/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type UserLoginRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type UserSaveRequest struct {
	ID          uint64              `form:"id"`
	Name        string              `form:"name" binding:"notblank"`
	Email       string              `form:"email" binding:"required,email"`
	Password    string              `form:"password"`
	Permissions []models.Permission `form:"permissions"`
}

type UserInfo struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Permissions []int  `json:"permissions"`
}

func NewUserInfo(u *models.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Permissions: u.GetPermissions(),
	}
}

func UserLogin(c *gin.Context) {
	r := UserLoginRequest{}
	if err := c.ShouldBindWith(&r, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	user, success := models.UserLogin(r.Email, r.Password)
	if !success {
		c.JSON(http.StatusUnauthorized, Response{"invalid email or password"})
		return
	}
	if err := auth.LoadSession(c).LoginUser(&user); err != nil {
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": "", "name": user.Name, "permissions": user.GetPermissions()})
}

func UserLogout(c *gin.Context, user *models.User) {
	if err := auth.LoadSession(c).LogoutUser(); err != nil {
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

func UserGetStatus(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, NewUserInfo(user))
}

// UserSave creates a user (no ID given) or updates an existing one. Admin only.
func UserSave(c *gin.Context, user *models.User) {
	r := UserSaveRequest{}
	if err := c.ShouldBindWith(&r, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if r.ID == 0 {
		if r.Password == "" {
			c.JSON(http.StatusBadRequest, Response{"password is required"})
			return
		}
		u, err := models.UserCreate(r.Name, r.Email, r.Password)
		if errors.Is(err, models.ErrInvalidPassword) {
			c.JSON(http.StatusBadRequest, Response{err.Error()})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, DBError1Response)
			return
		}
		r.ID = u.ID
	}
	u := models.UserLoad(r.ID)
	if u.ID == 0 {
		c.JSON(http.StatusNotFound, Response{"user not found"})
		return
	}
	u.Name = r.Name
	u.Email = r.Email
	if r.Password != "" {
		if err := u.SetPassword(r.Password); err != nil {
			c.JSON(http.StatusBadRequest, Response{err.Error()})
			return
		}
	}
	if err := db.Instance.Model(&u).Updates(map[string]any{
		"name":     u.Name,
		"email":    u.Email,
		"password": u.Password,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	if err := u.SetPermissions(user.ID, r.Permissions); err != nil {
		c.JSON(http.StatusInternalServerError, DBError3Response)
		return
	}
	c.JSON(http.StatusOK, NewUserInfo(&u))
}
