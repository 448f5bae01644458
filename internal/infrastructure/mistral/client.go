package mistral

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"resty.dev/v3"

	"github.com/janhq/mistralhub/internal/domain/completion"
	"github.com/janhq/mistralhub/internal/domain/conversation"
	"github.com/janhq/mistralhub/internal/infrastructure/observability"
	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

const (
	clientName           = "mistral"
	dataPrefix           = "data:"
	doneMarker           = "[DONE]"
	scannerInitialBuffer = 12 * 1024        // 12KB
	scannerMaxBuffer     = 10 * 1024 * 1024 // 10MB
)

// Client talks to the Mistral chat completions API, which follows the
// OpenAI wire format.
type Client struct {
	client      *resty.Client
	baseURL     string
	apiKey      string
	serviceName string
	log         zerolog.Logger
}

var _ completion.Provider = (*Client)(nil)

// NewClient builds an upstream client.
func NewClient(client *resty.Client, baseURL, apiKey, serviceName string, log zerolog.Logger) *Client {
	return &Client{
		client:      client,
		baseURL:     normalizeBaseURL(baseURL),
		apiKey:      apiKey,
		serviceName: serviceName,
		log:         log.With().Str("client", clientName).Logger(),
	}
}

// StreamChat opens a streaming chat completion. The returned stream owns
// the HTTP response body until Close.
func (c *Client) StreamChat(ctx context.Context, modelID string, messages []conversation.ChatTurn) (completion.FragmentStream, error) {
	// The span stays open for the life of the stream and ends in Close.
	ctx, span := observability.StartSpan(ctx, c.serviceName, "mistral.chat.stream")
	observability.AddSpanAttributes(ctx, attribute.String("llm.model", modelID), attribute.Int("llm.messages", len(messages)))

	request := openai.ChatCompletionRequest{
		Model:    modelID,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	}

	resp, err := c.prepareRequest(ctx).
		SetBody(request).
		SetHeader("Accept", "text/event-stream").
		SetHeader("Accept-Encoding", "identity").
		SetDoNotParseResponse(true).
		Post(c.endpoint("/chat/completions"))
	if err != nil {
		observability.RecordError(ctx, err)
		span.End()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, err.Error(), err, "8e1f0c2d-3a4b-4c5d-9e6f-7a8b9c0d1e2f")
	}
	if resp.IsError() {
		perr := c.errorFromBody(ctx, resp.StatusCode(), readAndClose(resp.RawResponse), "streaming request failed")
		observability.RecordError(ctx, perr)
		span.End()
		return nil, perr
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		perr := platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "streaming request failed: empty response body", nil, "1b3ab461-dbf9-4034-8abb-dfc6ea8486c5")
		observability.RecordError(ctx, perr)
		span.End()
		return nil, perr
	}

	return newSSEStream(resp.RawResponse.Body, span, c.log), nil
}

// Complete runs a single-shot, possibly multimodal, completion and returns the text of the first choice.
func (c *Client) Complete(ctx context.Context, req completion.CompletionRequest) (string, error) {
	ctx, span := observability.StartSpan(ctx, c.serviceName, "mistral.chat.complete")
	defer span.End()
	observability.AddSpanAttributes(ctx, attribute.String("llm.model", req.Model), attribute.Int("llm.parts", len(req.Parts)))

	request := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: toCompletionMessages(req),
	}

	var respBody openai.ChatCompletionResponse
	resp, err := c.prepareRequest(ctx).
		SetBody(request).
		SetResult(&respBody).
		Post(c.endpoint("/chat/completions"))
	if err != nil {
		observability.RecordError(ctx, err)
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, err.Error(), err, "3476dd55-5fc0-4653-bd10-665895ecc099")
	}
	if resp.IsError() {
		perr := c.errorFromBody(ctx, resp.StatusCode(), resp.String(), "request failed")
		observability.RecordError(ctx, perr)
		return "", perr
	}

	if len(respBody.Choices) == 0 {
		return "", nil
	}
	return messageText(respBody.Choices[0].Message), nil
}

func (c *Client) prepareRequest(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if strings.TrimSpace(c.apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	return req
}

func (c *Client) endpoint(path string) string {
	if c.baseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

// errorFromBody turns an upstream error response into a readable error.
// Mistral and OpenAI style bodies carry {"message"} or {"error":{"message"}}.
func (c *Client) errorFromBody(ctx context.Context, status int, body, message string) error {
	detail := upstreamErrorDetail(body)
	c.log.Warn().Int("status", status).Str("detail", detail).Msg(message)
	text := fmt.Sprintf("%s with status %d", message, status)
	if detail != "" {
		text = fmt.Sprintf("%s: %s", text, detail)
	}
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, text, nil,
		"a1f46e0d-4017-4411-ac05-987946c3066d", map[string]any{"upstream_status": status})
}

func upstreamErrorDetail(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return ""
	}
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
		if payload.Error != nil && payload.Error.Message != "" {
			return payload.Error.Message
		}
		var msg string
		if json.Unmarshal(payload.Message, &msg) == nil && msg != "" {
			return msg
		}
	}
	return trimmed
}

func toOpenAIMessages(turns []conversation.ChatTurn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	return messages
}

func toCompletionMessages(req completion.CompletionRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Parts) == 1 && req.Parts[0].Type == completion.PartText {
		user.Content = req.Parts[0].Text
	} else {
		for _, part := range req.Parts {
			switch part.Type {
			case completion.PartImage:
				user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: part.ImageURL},
				})
			default:
				user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: part.Text,
				})
			}
		}
	}
	return append(messages, user)
}

func messageText(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" {
		return msg.Content
	}
	var b strings.Builder
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func readAndClose(raw *http.Response) string {
	if raw == nil || raw.Body == nil {
		return ""
	}
	defer raw.Body.Close()
	body, err := io.ReadAll(io.LimitReader(raw.Body, 64*1024))
	if err != nil {
		return ""
	}
	return string(body)
}

func normalizeBaseURL(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// sseStream adapts an upstream SSE body to completion.FragmentStream.
type sseStream struct {
	body      io.ReadCloser
	scanner   *bufio.Scanner
	span      trace.Span
	log       zerolog.Logger
	done      bool
	chunks    int
	closeOnce sync.Once
	closeErr  error
}

func newSSEStream(body io.ReadCloser, span trace.Span, log zerolog.Logger) *sseStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)
	return &sseStream{body: body, scanner: scanner, span: span, log: log}
}

// Recv returns the next delta; deltas may be empty (role-only or usage chunks).
func (s *sseStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for s.scanner.Scan() {
		data, ok := strings.CutPrefix(s.scanner.Text(), dataPrefix)
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == doneMarker {
			s.done = true
			return "", io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			s.log.Warn().Err(err).Str("data", data).Msg("failed to parse stream chunk JSON")
			continue
		}
		if chunk.Error != nil {
			s.done = true
			err := fmt.Errorf("%s", chunk.Error.Message)
			s.span.RecordError(err)
			s.span.SetStatus(codes.Error, err.Error())
			return "", err
		}
		s.chunks++

		var delta strings.Builder
		for _, choice := range chunk.Choices {
			delta.WriteString(choice.Delta.Content)
		}
		return delta.String(), nil
	}
	s.done = true
	if err := s.scanner.Err(); err != nil {
		s.span.RecordError(err)
		return "", err
	}
	return "", io.EOF
}

func (s *sseStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
		s.span.SetAttributes(attribute.Int("llm.stream.chunks", s.chunks))
		s.span.End()
	})
	return s.closeErr
}
