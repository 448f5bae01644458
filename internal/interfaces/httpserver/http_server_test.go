package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/mistralhub/internal/config"
	"github.com/janhq/mistralhub/internal/domain/completion"
	"github.com/janhq/mistralhub/internal/domain/conversation"
)

type scriptedStream struct {
	deltas []string
	err    error
	closed bool
}

func (s *scriptedStream) Recv() (string, error) {
	if len(s.deltas) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	d := s.deltas[0]
	s.deltas = s.deltas[1:]
	return d, nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

type fakeUpstream struct {
	mu          sync.Mutex
	stream      *scriptedStream
	openErr     error
	completions []string
	completeErr error
	calls       []completion.CompletionRequest
	streamCalls int
}

func (f *fakeUpstream) StreamChat(ctx context.Context, modelID string, messages []conversation.ChatTurn) (completion.FragmentStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamCalls++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

func (f *fakeUpstream) Complete(ctx context.Context, req completion.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.completeErr != nil {
		return "", f.completeErr
	}
	if len(f.completions) == 0 {
		return "", nil
	}
	out := f.completions[0]
	f.completions = f.completions[1:]
	return out, nil
}

func newTestServer(upstream completion.Provider) http.Handler {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		ServiceName:     "mistralhub-test",
		Environment:     "test",
		HTTPPort:        8080,
		ShutdownTimeout: time.Second,
		EnableSwagger:   true,
		AllowedOrigins:  []string{"http://localhost:3000"},
	}
	service := completion.NewService(upstream, completion.Options{}, zerolog.Nop())
	return New(cfg, zerolog.Nop(), service).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChatStreamsFrames(t *testing.T) {
	upstream := &fakeUpstream{stream: &scriptedStream{deltas: []string{"Hel", "", "lo!"}}}
	h := newTestServer(upstream)

	for _, path := range []string{"/chat", "/api/chat"} {
		upstream.stream = &scriptedStream{deltas: []string{"Hel", "", "lo!"}}
		rec := do(t, h, http.MethodPost, path, `{"messages":[{"role":"user","content":"Hi"}],"model":"mistral-small-latest"}`)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		assert.Equal(t, "data: {\"content\":\"Hel\"}\n\ndata: {\"content\":\"lo!\"}\n\ndata: [DONE]\n\n", rec.Body.String(), path)
		assert.True(t, upstream.stream.closed)
	}
}

func TestChatMidStreamErrorFrame(t *testing.T) {
	upstream := &fakeUpstream{stream: &scriptedStream{deltas: []string{"par"}, err: errors.New("connection reset")}}
	rec := do(t, newTestServer(upstream), http.MethodPost, "/chat", `{"messages":[{"role":"user","content":"Hi"}],"model":"mistral-small-latest"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data: {\"content\":\"par\"}\n\ndata: {\"error\":\"connection reset\"}\n\n", rec.Body.String())
}

func TestChatMissingFields(t *testing.T) {
	upstream := &fakeUpstream{}
	h := newTestServer(upstream)

	for _, body := range []string{`{}`, `{"model":"mistral-small-latest"}`, `{"messages":[{"role":"user","content":"Hi"}]}`} {
		rec := do(t, h, http.MethodPost, "/chat", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Missing required fields: messages, model", decodeError(t, rec)["error"])
	}
	assert.Zero(t, upstream.streamCalls)

	rec := do(t, h, http.MethodPost, "/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatPreStreamFailure(t *testing.T) {
	upstream := &fakeUpstream{openErr: errors.New("dial tcp: connection refused")}
	rec := do(t, newTestServer(upstream), http.MethodPost, "/chat", `{"messages":[{"role":"user","content":"Hi"}],"model":"mistral-small-latest"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	body := decodeError(t, rec)
	assert.Equal(t, "dial tcp: connection refused", body["error"])
	assert.NotEmpty(t, body["request_id"])
}

func TestVision(t *testing.T) {
	upstream := &fakeUpstream{completions: []string{"A cat."}}
	h := newTestServer(upstream)

	rec := do(t, h, http.MethodPost, "/vision", `{"image":"aGk="}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content":"A cat."}`, rec.Body.String())
	require.Len(t, upstream.calls, 1)
	assert.Equal(t, "pixtral-large-latest", upstream.calls[0].Model)

	rec = do(t, h, http.MethodPost, "/api/vision", `{"prompt":"what?"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required field: image", decodeError(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/vision", `{"image":"aGk="}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "No response from vision model", decodeError(t, rec)["error"])
}

func TestDocumentWhitespacePromptHasNullAnswer(t *testing.T) {
	upstream := &fakeUpstream{completions: []string{"Invoice 42"}}
	rec := do(t, newTestServer(upstream), http.MethodPost, "/document", `{"document":"cGRm","prompt":"   "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"extractedText":"Invoice 42","answer":null}`, rec.Body.String())
	assert.Len(t, upstream.calls, 1)
}

func TestDocumentWithQuestion(t *testing.T) {
	upstream := &fakeUpstream{completions: []string{"Invoice 42", "The total is 42."}}
	rec := do(t, newTestServer(upstream), http.MethodPost, "/document", `{"document":"cGRm","prompt":"What is the total?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"extractedText":"Invoice 42","answer":"The total is 42."}`, rec.Body.String())
	require.Len(t, upstream.calls, 2)
	assert.Equal(t, "mistral-large-latest", upstream.calls[1].Model)
}

func TestDocumentEmptyExtractionSkipsQuestion(t *testing.T) {
	upstream := &fakeUpstream{completions: []string{""}}
	rec := do(t, newTestServer(upstream), http.MethodPost, "/document", `{"document":"cGRm","prompt":"What is the total?"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to extract text from document", decodeError(t, rec)["error"])
	assert.Len(t, upstream.calls, 1)
}

func TestModelsAndProbes(t *testing.T) {
	h := newTestServer(&fakeUpstream{})

	rec := do(t, h, http.MethodGet, "/models", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var models struct {
		Data []struct {
			ID             string `json:"id"`
			SupportsVision bool   `json:"supportsVision"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &models))
	require.Len(t, models.Data, 5)
	assert.Equal(t, "mistral-large-latest", models.Data[0].ID)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(&fakeUpstream{})
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagates(t *testing.T) {
	h := newTestServer(&fakeUpstream{})
	req := httptest.NewRequest(http.MethodPost, "/vision", strings.NewReader(`{}`))
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "req-123", decodeError(t, rec)["request_id"])
}
