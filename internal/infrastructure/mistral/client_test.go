package mistral

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/janhq/mistralhub/internal/domain/completion"
	"github.com/janhq/mistralhub/internal/domain/conversation"
	"github.com/janhq/mistralhub/internal/utils/httpclients"
	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

func newTestClient(url string) *Client {
	return NewClient(httpclients.NewClient("mistral-test", zerolog.Nop()), url+"/v1/", "secret", "mistralhub-test", zerolog.Nop())
}

func drain(t *testing.T, s completion.FragmentStream) ([]string, error) {
	t.Helper()
	var out []string
	for {
		delta, err := s.Recv()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, delta)
	}
}

func TestStreamChat(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\",\"content\":\"\"}}]}\n\n")
		fmt.Fprint(w, ": ping\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo!\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	s, err := client.StreamChat(context.Background(), "mistral-small-latest", []conversation.ChatTurn{{Role: "user", Content: "Hi"}})
	require.NoError(t, err)
	defer s.Close()

	deltas, err := drain(t, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Hel", "lo!"}, deltas)

	assert.Equal(t, "mistral-small-latest", gotBody["model"])
	assert.Equal(t, true, gotBody["stream"])

	// Recv after the end keeps reporting EOF and Close is idempotent.
	_, err = s.Recv()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestStreamChatSpanCoversWholeStream(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	}()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo!\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	s, err := newTestClient(server.URL).StreamChat(context.Background(), "mistral-small-latest", []conversation.ChatTurn{{Role: "user", Content: "Hi"}})
	require.NoError(t, err)
	assert.Empty(t, recorder.Ended(), "span must stay open while the stream is consumed")

	_, err = drain(t, s)
	require.NoError(t, err)
	assert.Empty(t, recorder.Ended())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "mistral.chat.stream", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.Int("llm.stream.chunks", 2))
	assert.Contains(t, ended[0].Attributes(), attribute.String("llm.model", "mistral-small-latest"))
}

func TestStreamChatInBandError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"par\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"error\":{\"message\":\"overloaded\"}}\n\n")
	}))
	defer server.Close()

	s, err := newTestClient(server.URL).StreamChat(context.Background(), "m", []conversation.ChatTurn{{Role: "user", Content: "Hi"}})
	require.NoError(t, err)
	defer s.Close()

	deltas, err := drain(t, s)
	assert.Equal(t, []string{"par"}, deltas)
	require.Error(t, err)
	assert.Equal(t, "overloaded", err.Error())
}

func TestStreamChatHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"object":"error","message":"Invalid model: nope","type":"invalid_model"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).StreamChat(context.Background(), "nope", []conversation.ChatTurn{{Role: "user", Content: "Hi"}})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
	assert.Equal(t, "streaming request failed with status 400: Invalid model: nope", platformerrors.Message(err))
}

func TestCompleteMultimodal(t *testing.T) {
	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"A cat."},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	content, err := newTestClient(server.URL).Complete(context.Background(), completion.CompletionRequest{
		Model:  "pixtral-large-latest",
		System: "be brief",
		Parts:  []completion.Part{completion.TextPart("What is this?"), completion.ImagePart("image/jpeg", "aGk=")},
	})
	require.NoError(t, err)
	assert.Equal(t, "A cat.", content)

	assert.Equal(t, "pixtral-large-latest", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.JSONEq(t, `"be brief"`, string(gotBody.Messages[0].Content))
	assert.JSONEq(t, `[{"type":"text","text":"What is this?"},{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,aGk="}}]`,
		string(gotBody.Messages[1].Content))
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer server.Close()

	content, err := newTestClient(server.URL).Complete(context.Background(), completion.CompletionRequest{
		Model: "mistral-large-latest",
		Parts: []completion.Part{completion.TextPart("hi")},
	})
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestCompleteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Unauthorized"}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), completion.CompletionRequest{
		Model: "mistral-large-latest",
		Parts: []completion.Part{completion.TextPart("hi")},
	})
	require.Error(t, err)
	assert.Equal(t, "request failed with status 401: Unauthorized", platformerrors.Message(err))
}

func TestUpstreamErrorDetail(t *testing.T) {
	assert.Equal(t, "", upstreamErrorDetail("  "))
	assert.Equal(t, "plain text", upstreamErrorDetail("plain text"))
	assert.Equal(t, "nested", upstreamErrorDetail(`{"error":{"message":"nested"}}`))
	assert.Equal(t, "flat", upstreamErrorDetail(`{"message":"flat"}`))
}
