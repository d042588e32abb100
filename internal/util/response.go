package util

import (
	"errors"
	"net/http"

	"github.com/gravishankar/satify-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// StoreError maps content store failures onto HTTP statuses: missing files are
// 404, stale tokens 409, upstream credential problems and transport failures
// 502 (the client cannot fix either).
func StoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFileNotFound), errors.Is(err, ErrLessonNotFound), errors.Is(err, ErrNoVersions):
		NotFound(c)
	case errors.Is(err, ErrStoreConflict):
		Conflict(c, "draft was modified by another editor, reload and retry")
	case errors.Is(err, ErrStoreAuth):
		logger.Log.Error("content store auth failure", zap.Error(err))
		Error(c, http.StatusBadGateway, "content store rejected credentials")
	case errors.Is(err, ErrStoreTransport):
		logger.Log.Error("content store transport failure", zap.Error(err))
		Error(c, http.StatusBadGateway, "content store unavailable")
	default:
		LogInternalError(c, err)
	}
}
