// utils/apperrors.go
package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AppError carries an HTTP status alongside a user-facing message so
// controllers can map service failures to responses without inspecting
// error strings.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) *AppError {
	return &AppError{Status: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

func NewBusinessRuleError(format string, args ...interface{}) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func WrapInternal(message string, err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// RespondAppError maps any error to the response envelope. Unknown errors
// become 500s with a generic message so internals never leak.
func RespondAppError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, APIResponse{Success: false, Message: appErr.Message, Error: appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error", Error: "Internal server error"})
}
