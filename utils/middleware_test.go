package utils

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCacheControl(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CacheControl(CacheNone))
	router.GET("/page", func(c *gin.Context) { c.String(http.StatusOK, "page") })
	router.GET("/image", func(c *gin.Context) {
		SetCache(c, CacheImage)
		c.String(http.StatusOK, "image")
	})

	for path, want := range map[string]string{"/page": "no-cache", "/image": "private, max-age=3600"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Header().Get("cache-control"), path)
	}
}

func TestErrorLogMiddleware(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(previous)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorLogMiddleware)
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "fine") })
	router.GET("/bad", func(c *gin.Context) { c.String(http.StatusBadRequest, strings.Repeat("x", 2*maxLoggedBody)) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Empty(t, buf.String())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, 2*maxLoggedBody, w.Body.Len())
	assert.Contains(t, buf.String(), "GET /bad: status 400")
	assert.NotContains(t, buf.String(), strings.Repeat("x", maxLoggedBody+1))
}
