package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// BindJSON decodes the request body into out. On failure it writes a 400
// and returns the error so the handler can stop. The raw body stays
// available under gin.BodyBytesKey.
func BindJSON(c *gin.Context, out interface{}) error {
	if err := c.ShouldBindBodyWith(out, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": []string{err.Error()},
		})
		return err
	}
	return nil
}

// RawBody returns the body cached by BindJSON.
func RawBody(c *gin.Context) []byte {
	if v, ok := c.Get(gin.BodyBytesKey); ok {
		if b, ok := v.([]byte); ok {
			return b
		}
	}
	return nil
}
