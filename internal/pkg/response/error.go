package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code.
// If it's not an AppError, it logs the error and responds with 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message, Code: string(appErr.Kind)})
		return
	}

	zerolog.Ctx(c.Request.Context()).Error().Err(err).
		Str("path", c.FullPath()).
		Msg("unhandled error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  string(apperror.KindInternal),
	})
}

// BadRequest responds with 400 for binding or validation failures.
func BadRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: message, Code: string(apperror.KindInvalidArgument)}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
