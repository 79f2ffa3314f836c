package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alamait/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies larger than maxBytes. Bodies without a
// Content-Length header are still capped by MaxBytesReader during binding.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeInvalidInput, "request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
