// util/http_util.go
package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
)

const UserIDKey = "userID"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message, "code": http.StatusText(code)})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch af_errors.KindOf(err) {
	case af_errors.ErrNotFound:
		return http.StatusNotFound
	case af_errors.ErrConflict:
		return http.StatusConflict
	case af_errors.ErrUnprocessable:
		return http.StatusUnprocessableEntity
	case af_errors.ErrUnauthorized:
		return http.StatusUnauthorized
	case af_errors.ErrForbidden:
		return http.StatusForbidden
	case af_errors.ErrBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithDomainError writes err with the status of its kind. Internal
// errors are logged with detail and returned with a generic message.
func RespondWithDomainError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		RespondWithError(c, status, "Internal server error", err)
		return
	}
	var de *af_errors.DomainError
	message := err.Error()
	if errors.As(err, &de) {
		message = de.Message
	}
	logger.Debug("Request failed",
		zap.Int("status", status),
		zap.String("error", message),
		zap.String("path", c.Request.URL.Path))
	c.JSON(status, gin.H{"error": message, "code": af_errors.KindOf(err).Error()})
}

// GetUserIDFromContext returns the authenticated user id set by the auth middleware.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", af_errors.ErrMissingCredential
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", af_errors.ErrInvalidCredential
	}
	return id, nil
}
