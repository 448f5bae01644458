package platformerrors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorCarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	err := NewError(ctx, LayerRoute, ErrorTypeValidation, "Missing required field: image", nil, "code-1")

	assert.Equal(t, "req-123", err.GetRequestID())
	assert.Equal(t, "code-1", err.GetUUID())
	assert.Equal(t, "Missing required field: image", err.UserMessage())
	assert.True(t, IsValidationError(err))
}

func TestLogErrorCarriesMetadata(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	ctx := WithRequestID(context.Background(), "req-9")
	err := NewErrorWithContext(ctx, LayerDomain, ErrorTypeExternal, "upstream down", errors.New("dial tcp"), "code-3",
		map[string]any{"model": "mistral-small-latest"})
	LogError(log, fmt.Errorf("relay: %w", err))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "code-3", entry["error_code"])
	assert.Equal(t, "EXTERNAL", entry["error_type"])
	assert.Equal(t, "domain", entry["layer"])
	assert.Equal(t, "req-9", entry["request_id"])
	assert.Equal(t, "mistral-small-latest", entry["model"])
	assert.Equal(t, "dial tcp", entry["error"])
	assert.Equal(t, "upstream down", entry["message"])
}

func TestLogErrorLevels(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	LogError(log, NewError(context.Background(), LayerRoute, ErrorTypeValidation, "bad input", nil, "code-4"))
	assert.Contains(t, buf.String(), `"level":"warn"`)

	buf.Reset()
	LogError(log, errors.New("plain"))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"error":"plain"`)

	buf.Reset()
	LogError(log, nil)
	assert.Empty(t, buf.String())
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrorTypeToHTTPStatus(ErrorTypeValidation))
	assert.Equal(t, http.StatusInternalServerError, ErrorTypeToHTTPStatus(ErrorTypeExternal))
	assert.Equal(t, http.StatusInternalServerError, ErrorTypeToHTTPStatus(ErrorTypeEmptyResult))
	assert.Equal(t, http.StatusNotFound, ErrorTypeToHTTPStatus(ErrorTypeNotFound))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "nice", Message(NewError(context.Background(), LayerDomain, ErrorTypeInternal, "nice", errors.New("ugly"), "")))
}
