package utils

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxLoggedBody = 512

type errorLogWriter struct {
	gin.ResponseWriter
	request string
}

func (w *errorLogWriter) Write(b []byte) (int, error) {
	if status := w.Status(); status >= http.StatusBadRequest {
		body := b
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}
		log.Printf("[DEBUG ERROR] %s: status %d, body: %s", w.request, status, body)
	}
	return w.ResponseWriter.Write(b)
}

func (w *errorLogWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// ErrorLogMiddleware logs error responses in debug mode. It has to be installed before
// gzip, otherwise it only sees compressed bodies.
func ErrorLogMiddleware(c *gin.Context) {
	c.Writer = &errorLogWriter{
		ResponseWriter: c.Writer,
		request:        c.Request.Method + " " + c.Request.URL.Path,
	}
	c.Next()
}
