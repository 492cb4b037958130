package server

import (
	"errors"
	"net/http"

	"github.com/dukandar/khata/internal/apperr"
	"github.com/gin-gonic/gin"
)

// writeError maps the core error taxonomy onto HTTP statuses. Persistence
// failures are retryable by re-running the whole operation; the others are
// not.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.KindValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.KindConfiguration):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperr.KindConflict):
		status = http.StatusConflict
	case errors.Is(err, apperr.KindNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.KindPersistence):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
