package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/royal-pizza/internal/ordering"
)

// errorResponse maps an ordering error to its status and JSON body. Storage
// details are logged, never returned.
func errorResponse(err error) (int, gin.H) {
	var oe *ordering.Error
	if !errors.As(err, &oe) {
		return http.StatusInternalServerError, gin.H{"error": "Internal error: " + err.Error()}
	}
	switch oe.Kind {
	case ordering.KindValidation:
		return http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "details": oe.Messages}
	case ordering.KindNotFound:
		return http.StatusNotFound, gin.H{"error": strings.Join(oe.Messages, "; ")}
	case ordering.KindDatabase:
		return http.StatusInternalServerError, gin.H{"error": "Database error"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Internal error: " + strings.Join(oe.Messages, "; ")}
	}
}

func writeError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	_ = c.Error(err)
	c.JSON(status, body)
}
