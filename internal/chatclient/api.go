package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"resty.dev/v3"

	"github.com/janhq/mistralhub/internal/domain/conversation"
	"github.com/janhq/mistralhub/internal/domain/model"
)

// Relay is the subset of the relay server a session needs.
type Relay interface {
	Chat(ctx context.Context, modelID model.ID, messages []conversation.ChatTurn, onFragment func(fragment, text string)) (string, error)
	Vision(ctx context.Context, req VisionRequest) (string, error)
	Document(ctx context.Context, req DocumentRequest) (DocumentResponse, error)
}

type chatRequest struct {
	Messages []conversation.ChatTurn `json:"messages"`
	Model    model.ID                `json:"model"`
}

// VisionRequest mirrors the /vision body.
type VisionRequest struct {
	Image  string   `json:"image"`
	Prompt string   `json:"prompt,omitempty"`
	Model  model.ID `json:"model,omitempty"`
}

type visionResponse struct {
	Content string `json:"content"`
}

// DocumentRequest mirrors the /document body.
type DocumentRequest struct {
	Document string   `json:"document"`
	Prompt   string   `json:"prompt"`
	Model    model.ID `json:"model,omitempty"`
}

// DocumentResponse carries the OCR text and the optional answer.
type DocumentResponse struct {
	ExtractedText string  `json:"extractedText"`
	Answer        *string `json:"answer"`
}

type modelsResponse struct {
	Data []model.Info `json:"data"`
}

// APIError is a non-2xx relay response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// API talks to the relay server over HTTP.
type API struct {
	client  *resty.Client
	baseURL string
}

var _ Relay = (*API)(nil)

func NewAPI(client *resty.Client, baseURL string) *API {
	return &API{
		client:  client,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// Chat streams a reply, calling onFragment as frames arrive.
func (a *API) Chat(ctx context.Context, modelID model.ID, messages []conversation.ChatTurn, onFragment func(fragment, text string)) (string, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetBody(chatRequest{Messages: messages, Model: modelID}).
		SetDoNotParseResponse(true).
		Post(a.baseURL + "/chat")
	if err != nil {
		return "", err
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return "", &APIError{Status: resp.StatusCode(), Message: "Failed to get response"}
	}
	body := resp.RawResponse.Body
	defer body.Close()

	if resp.IsError() {
		raw, _ := io.ReadAll(io.LimitReader(body, 64*1024))
		return "", apiError(resp.StatusCode(), string(raw), "Failed to get response")
	}
	return Consume(ctx, body, onFragment)
}

// Vision asks a question about an image.
func (a *API) Vision(ctx context.Context, req VisionRequest) (string, error) {
	var out visionResponse
	if err := a.postJSON(ctx, "/vision", req, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// Document runs OCR and the optional question on a document.
func (a *API) Document(ctx context.Context, req DocumentRequest) (DocumentResponse, error) {
	var out DocumentResponse
	if err := a.postJSON(ctx, "/document", req, &out); err != nil {
		return DocumentResponse{}, err
	}
	return out, nil
}

// Models fetches the catalog served by the relay.
func (a *API) Models(ctx context.Context) ([]model.Info, error) {
	var out modelsResponse
	resp, err := a.client.R().SetContext(ctx).SetResult(&out).Get(a.baseURL + "/models")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp.StatusCode(), resp.String(), "Failed to load models")
	}
	return out.Data, nil
}

func (a *API) postJSON(ctx context.Context, path string, body, result any) error {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(result).
		Post(a.baseURL + path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp.StatusCode(), resp.String(), fmt.Sprintf("Request to %s failed", path))
	}
	return nil
}

// apiError extracts {"error": "..."} from a relay error body.
func apiError(status int, body, fallback string) error {
	var payload struct {
		Error string `json:"error"`
	}
	message := fallback
	if json.Unmarshal([]byte(body), &payload) == nil && payload.Error != "" {
		message = payload.Error
	} else if status != 0 {
		message = fmt.Sprintf("%s (%d %s)", fallback, status, http.StatusText(status))
	}
	return &APIError{Status: status, Message: message}
}
