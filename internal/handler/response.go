package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/clinic-ops-api/pkg/errors"
)

type Response struct {
	Status  string         `json:"status"`
	Code    apperrors.Code `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    interface{}    `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(code apperrors.Code, message string) *Response {
	return &Response{
		Status:  "error",
		Code:    code,
		Message: message,
	}
}

// RespondError writes err as a JSON error response. Application errors
// carry their own code and HTTP status; anything else is an internal
// failure whose cause is logged but not leaked to the caller.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Code == apperrors.CodeInternal {
			log.Error().Err(appErr.Unwrap()).Str("path", c.FullPath()).Msg("internal error")
		}
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Code, appErr.Message))
		return
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
	c.JSON(http.StatusInternalServerError, NewErrorResponse(apperrors.CodeInternal, "internal server error"))
}
