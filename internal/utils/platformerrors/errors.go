package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// WithRequestID stores the request ID on the context so errors created downstream carry it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request ID stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation covers client input problems such as missing fields.
	ErrorTypeValidation ErrorType = "VALIDATION"
	// ErrorTypeExternal covers upstream model API failures.
	ErrorTypeExternal ErrorType = "EXTERNAL"
	// ErrorTypeEmptyResult is returned when the upstream call succeeded without usable content.
	ErrorTypeEmptyResult ErrorType = "EMPTY_RESULT"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeInternal    ErrorType = "INTERNAL"
)

// Layer represents the application layer where the error occurred
type Layer string

const (
	LayerDomain         Layer = "domain"
	LayerRoute          Layer = "route"
	LayerInfrastructure Layer = "infrastructure"
	LayerClient         Layer = "client"
)

// PlatformError represents an error with context and metadata
type PlatformError struct {
	UUID      string
	Type      ErrorType
	Message   string
	Err       error
	Context   map[string]any
	RequestID string
	Layer     Layer
	Timestamp time.Time
}

// Error implements the error interface
func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s][%s] %s: %v", e.Layer, e.Type, e.UUID, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s][%s] %s", e.Layer, e.Type, e.UUID, e.Message)
}

// Unwrap returns the underlying error
func (e *PlatformError) Unwrap() error {
	return e.Err
}

func (e *PlatformError) GetErrorType() ErrorType {
	return e.Type
}

func (e *PlatformError) GetRequestID() string {
	return e.RequestID
}

func (e *PlatformError) GetUUID() string {
	return e.UUID
}

// UserMessage is the human readable part of the error, without layer/type decoration.
func (e *PlatformError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Type)
}

// NewError creates a new PlatformError with the specified parameters
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error, customUUID string) *PlatformError {
	return NewErrorWithContext(ctx, layer, errorType, message, err, customUUID, nil)
}

// NewErrorWithContext creates a new PlatformError with additional context fields
func NewErrorWithContext(ctx context.Context, layer Layer, errorType ErrorType, message string, err error, customUUID string, contextFields map[string]any) *PlatformError {
	errorUUID := customUUID
	if errorUUID == "" {
		errorUUID = "auto-generated-uuid"
	}

	errorContext := make(map[string]any, len(contextFields))
	for k, v := range contextFields {
		errorContext[k] = v
	}

	return &PlatformError{
		UUID:      errorUUID,
		Type:      errorType,
		Message:   message,
		Err:       err,
		RequestID: RequestIDFromContext(ctx),
		Layer:     layer,
		Timestamp: time.Now().UTC(),
		Context:   errorContext,
	}
}

// ErrorTypeToHTTPStatus maps error types to HTTP status codes.
// Upstream failures surface as 500 so clients only ever see 400 or 500 from the relay endpoints.
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeExternal, ErrorTypeEmptyResult, ErrorTypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsErrorType checks if an error is a PlatformError with the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}

	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr.Type == errorType
	}
	return false
}

// IsValidationError reports whether err is a client input error.
func IsValidationError(err error) bool {
	return IsErrorType(err, ErrorTypeValidation)
}

// Message returns the user facing message of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr.UserMessage()
	}
	return err.Error()
}

// LogError logs err with its code, layer and request id. Client input
// errors are logged at warn level, everything else at error level.
func LogError(logger zerolog.Logger, err error) {
	if err == nil {
		return
	}

	var platformErr *PlatformError
	if !errors.As(err, &platformErr) {
		logger.Error().Err(err).Msg("unclassified error")
		return
	}

	event := logger.Error()
	if platformErr.Type == ErrorTypeValidation || platformErr.Type == ErrorTypeNotFound {
		event = logger.Warn()
	}
	event = event.
		Str("error_code", platformErr.UUID).
		Str("error_type", string(platformErr.Type)).
		Str("layer", string(platformErr.Layer))
	if platformErr.RequestID != "" {
		event = event.Str("request_id", platformErr.RequestID)
	}
	for k, v := range platformErr.Context {
		event = event.Interface(k, v)
	}
	if platformErr.Err != nil {
		event = event.Err(platformErr.Err)
	}
	event.Msg(platformErr.UserMessage())
}
