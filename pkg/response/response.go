// Package response maps engine errors onto HTTP responses so every
// handler reports the error taxonomy the same way.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"proximity-service/internal/store"
)

// Error writes the HTTP response for err. The taxonomy matters to the
// client: precondition failures render as "already done", conflicts as
// retryable, and unknown errors pass their message through verbatim.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrPreconditionFailed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
