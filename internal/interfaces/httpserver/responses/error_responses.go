package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code          string `json:"code,omitempty"` // UUID from PlatformError
	Error         string `json:"error"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// HandleError handles domain errors and returns appropriate HTTP responses
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		errorMessage := domainErr.UserMessage()
		if errorMessage == "" {
			errorMessage = message
		}

		_ = reqCtx.Error(domainErr)
		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Code:          domainErr.GetUUID(),
			Error:         errorMessage,
			ErrorInstance: domainErr,
			RequestID:     domainErr.GetRequestID(),
		})
		return
	}

	if err != nil {
		_ = reqCtx.Error(err)
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:         message,
		ErrorInstance: err,
		RequestID:     platformerrors.RequestIDFromContext(reqCtx.Request.Context()),
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, uuid)
	HandleError(reqCtx, err, message)
}
