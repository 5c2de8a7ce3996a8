// Package api shapes every HTTP response into the uniform envelope
// {statusCode, data, message, success}.
package api

import (
	"github.com/gin-gonic/gin"

	"backend/internal/apperror"
)

type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// Success writes a success envelope with the given status code.
func Success(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Envelope{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Fail renders err through the apperror taxonomy and aborts the request.
func Fail(c *gin.Context, err error) {
	appErr := apperror.From(err)
	c.AbortWithStatusJSON(appErr.Code, Envelope{
		StatusCode: appErr.Code,
		Message:    appErr.Message,
		Success:    false,
	})
}
