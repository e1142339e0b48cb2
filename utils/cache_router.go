package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Cache times in seconds
const (
	CacheNone  = 0
	CacheImage = 3600
	CacheDay   = 86400
)

// CacheControl sets the cache policy for everything served after it. Handlers can still
// override it with SetCache once they know what they are serving.
func CacheControl(seconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetCache(c, seconds)
		c.Next()
	}
}

// SetCache marks the response as private, album content must not end up in shared caches
func SetCache(c *gin.Context, seconds int) {
	if seconds <= CacheNone {
		c.Header("cache-control", "no-cache")
		return
	}
	c.Header("cache-control", "private, max-age="+strconv.Itoa(seconds))
}
