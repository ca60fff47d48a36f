package httputil

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

// RespondWithList sends a success response carrying the item count
func RespondWithList(c *gin.Context, data interface{}, count int) {
	resp := NewSuccessResponse(data)
	resp.Count = &count
	c.JSON(http.StatusOK, resp)
}

// ErrorStatus maps err onto an HTTP status and a client-safe message.
// Application errors keep their message and status; anything else is
// reported as an internal error.
func ErrorStatus(err error) (int, string) {
	if appErr, ok := errors.As(err); ok {
		return appErr.StatusCode(), appErr.Error()
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "data service timed out"
	}
	return http.StatusInternalServerError, "internal server error"
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	status, message := ErrorStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString("request_id")).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, NewErrorResponse(message))
}
