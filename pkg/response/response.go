package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Error     any    `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func newErrorBody(ctx *gin.Context, message string, details any) ErrorBody {
	return ErrorBody{
		Success:   false,
		Message:   message,
		Error:     details,
		RequestID: ctx.GetString("request_id"),
	}
}

// Error writes an error body with the given status.
func Error(ctx *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, newErrorBody(ctx, message, details))
}

// Abort writes an error body and stops the handler chain.
func Abort(ctx *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, newErrorBody(ctx, message, details))
}

// OK writes a 200 JSON body.
func OK(ctx *gin.Context, body any) {
	ctx.JSON(http.StatusOK, body)
}

// Created writes a 201 JSON body.
func Created(ctx *gin.Context, body any) {
	ctx.JSON(http.StatusCreated, body)
}
