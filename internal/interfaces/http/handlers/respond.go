// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// respondError writes an error response with the status derived from
// the error's classification.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	message := err.Error()
	if status >= 500 {
		// Do not leak internals to clients
		message = "Internal server error"
		c.Error(err)
	}
	c.JSON(status, gin.H{
		"error": message,
	})
}
