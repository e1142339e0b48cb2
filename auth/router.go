package auth

import (
	"net/http"
	"scrapbook/models"

	"github.com/gin-gonic/gin"
)

// HandlerFunc is called with a logged in user that has all required permissions
type HandlerFunc func(c *gin.Context, user *models.User)

// Router registers handlers behind a login check. Required permissions apply to every
// route of the router, more can be added per route.
type Router struct {
	Base     gin.IRoutes
	Required []models.Permission
}

func (r *Router) wrap(handler HandlerFunc, extra []models.Permission) gin.HandlerFunc {
	required := append(append([]models.Permission{}, r.Required...), extra...)
	return func(c *gin.Context) {
		user := LoadSession(c).User()
		if user.ID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
			return
		}
		if !user.HasPermissions(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		handler(c, &user)
	}
}

func (r *Router) POST(path string, handler HandlerFunc, required ...models.Permission) {
	r.Base.POST(path, r.wrap(handler, required))
}

func (r *Router) GET(path string, handler HandlerFunc, required ...models.Permission) {
	r.Base.GET(path, r.wrap(handler, required))
}

func (r *Router) PUT(path string, handler HandlerFunc, required ...models.Permission) {
	r.Base.PUT(path, r.wrap(handler, required))
}
