package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/mistralhub/internal/domain/conversation"
	"github.com/janhq/mistralhub/internal/domain/model"
	"github.com/janhq/mistralhub/internal/domain/stream"
	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

const (
	defaultVisionPrompt = "Describe this image in detail. What do you see?"
	ocrPrompt           = "Extract all the text content from this document. Preserve the structure and formatting as much as possible."
	documentQASystem    = "You are a helpful assistant analyzing a document. Answer questions based on the document content provided."

	imageMimeType    = "image/jpeg"
	documentMimeType = "application/pdf"
)

// Options tunes the completion service.
type Options struct {
	// StreamTimeout bounds a whole relay; zero means no limit.
	StreamTimeout time.Duration
	// UpstreamTimeout bounds each single-shot call; zero means no limit.
	UpstreamTimeout time.Duration
	// StrictModels rejects model ids missing from the catalog.
	StrictModels bool
}

// ChatRequest is the relay input.
type ChatRequest struct {
	Messages []conversation.ChatTurn
	Model    string
}

// VisionRequest is a single image question.
type VisionRequest struct {
	Image  string
	Prompt string
	Model  string
}

// DocumentRequest asks for OCR and optionally an answer about the document.
type DocumentRequest struct {
	Document string
	Prompt   string
	Model    string
}

// DocumentResult carries the OCR text and the answer, nil when no question was asked.
type DocumentResult struct {
	ExtractedText string
	Answer        *string
}

// RelayResult summarises one pumped stream.
type RelayResult struct {
	Fragments  int
	FirstDelta time.Duration
	// UpstreamErr is set when an error frame was emitted.
	UpstreamErr error
	// ClientGone is set when the caller disconnected before the stream ended.
	ClientGone bool
}

// Service implements the streaming relay and the single-shot modal endpoints.
type Service struct {
	provider Provider
	opts     Options
	log      zerolog.Logger
}

// NewService wires the completion service with its upstream provider.
func NewService(provider Provider, opts Options, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		opts:     opts,
		log:      log.With().Str("component", "completion-service").Logger(),
	}
}

// ChatStream is an opened upstream stream waiting to be relayed.
type ChatStream struct {
	upstream FragmentStream
	ctx      context.Context
	cancel   context.CancelFunc
	model    string
	opened   time.Time
}

// Model returns the model the stream was opened with.
func (cs *ChatStream) Model() string {
	return cs.model
}

// Close releases the upstream connection.
func (cs *ChatStream) Close() error {
	defer cs.cancel()
	return cs.upstream.Close()
}

// ValidateChat checks the relay input without touching the upstream.
func (s *Service) ValidateChat(ctx context.Context, req ChatRequest) error {
	if len(req.Messages) == 0 || strings.TrimSpace(req.Model) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"Missing required fields: messages, model", nil, "6b0f6d0e-5a3b-4c1f-9e51-2f0c1f7f8a10")
	}
	if s.opts.StrictModels && !model.Known(req.Model) {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("Unknown model: %s", req.Model), nil, "0e5b0a61-7e8f-4b9c-a6e0-3c1d9d7b2f44",
			map[string]any{"model": req.Model})
	}
	return nil
}

// OpenChatStream validates the request and opens the upstream stream. Any
// error returned here happened before a single byte was relayed.
func (s *Service) OpenChatStream(ctx context.Context, req ChatRequest) (*ChatStream, error) {
	if err := s.ValidateChat(ctx, req); err != nil {
		return nil, err
	}

	streamCtx, cancel := s.withTimeout(ctx, s.opts.StreamTimeout)
	upstream, err := s.provider.StreamChat(streamCtx, req.Model, req.Messages)
	if err != nil {
		cancel()
		return nil, s.upstreamFailure(ctx, err, "e2a4c3d1-8d6b-4f7a-9b0e-5c2d1a3f6e87", "chat", req.Model)
	}

	return &ChatStream{
		upstream: upstream,
		ctx:      streamCtx,
		cancel:   cancel,
		model:    req.Model,
		opened:   time.Now(),
	}, nil
}

// Relay pumps cs into w until the upstream ends, fails, or the caller goes
// away. It always closes cs. Every upstream outcome produces a terminal frame:
// the [DONE] sentinel on success, one error frame on failure.
func (s *Service) Relay(ctx context.Context, cs *ChatStream, w *stream.Writer) RelayResult {
	defer func() {
		if err := cs.Close(); err != nil {
			s.log.Debug().Err(err).Msg("close upstream stream")
		}
	}()

	var result RelayResult
	for {
		if ctx.Err() != nil {
			result.ClientGone = true
			return result
		}

		delta, err := cs.upstream.Recv()
		if errors.Is(err, io.EOF) {
			if werr := w.WriteDone(); werr != nil {
				result.ClientGone = true
			}
			return result
		}
		if err != nil {
			if ctx.Err() != nil {
				result.ClientGone = true
				return result
			}
			message := s.streamErrorMessage(cs, err)
			s.log.Warn().Err(err).Str("model", cs.model).Int("fragments", result.Fragments).Msg("upstream stream failed")
			result.UpstreamErr = err
			if werr := w.WriteError(message); werr != nil {
				result.ClientGone = true
			}
			return result
		}
		if delta == "" {
			continue
		}

		if result.Fragments == 0 {
			result.FirstDelta = time.Since(cs.opened)
		}
		if werr := w.WriteContent(delta); werr != nil {
			s.log.Debug().Err(werr).Msg("client write failed, abandoning upstream")
			result.ClientGone = true
			return result
		}
		result.Fragments++
	}
}

func (s *Service) streamErrorMessage(cs *ChatStream, err error) string {
	if errors.Is(cs.ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("Stream timed out after %s", s.opts.StreamTimeout)
	}
	if msg := platformerrors.Message(err); msg != "" {
		return msg
	}
	return "Stream error"
}

// Vision answers a prompt about one base64 encoded image.
func (s *Service) Vision(ctx context.Context, req VisionRequest) (string, error) {
	if strings.TrimSpace(req.Image) == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"Missing required field: image", nil, "3f9e7c2a-1b4d-4e6f-8a0c-7d5b9e1f2a36")
	}
	modelID := req.Model
	if modelID == "" {
		modelID = model.DefaultVisionModel
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = defaultVisionPrompt
	}

	callCtx, cancel := s.withTimeout(ctx, s.opts.UpstreamTimeout)
	defer cancel()

	content, err := s.provider.Complete(callCtx, CompletionRequest{
		Model: modelID,
		Parts: []Part{TextPart(prompt), ImagePart(imageMimeType, req.Image)},
	})
	if err != nil {
		return "", s.upstreamFailure(ctx, err, "9c1a2b3d-4e5f-4a6b-8c7d-0e1f2a3b4c5d", "vision", modelID)
	}
	if content == "" {
		return "", emptyResult(ctx, "No response from vision model", "b7d8e9f0-1a2b-4c3d-9e4f-5a6b7c8d9e0f")
	}
	return content, nil
}

// Document extracts the text of a base64 encoded document and, when a
// prompt is given, answers it using the extracted text. The answer stage
// depends on the OCR output, so the two calls are strictly sequential.
func (s *Service) Document(ctx context.Context, req DocumentRequest) (DocumentResult, error) {
	if strings.TrimSpace(req.Document) == "" {
		return DocumentResult{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"Missing required field: document", nil, "5e6f7a8b-9c0d-4e1f-a2b3-c4d5e6f7a8b9")
	}

	extracted, err := s.extractText(ctx, req.Document)
	if err != nil {
		return DocumentResult{}, err
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return DocumentResult{ExtractedText: extracted}, nil
	}

	modelID := req.Model
	if modelID == "" {
		modelID = model.DefaultDocumentModel
	}

	callCtx, cancel := s.withTimeout(ctx, s.opts.UpstreamTimeout)
	defer cancel()

	answer, err := s.provider.Complete(callCtx, CompletionRequest{
		Model:  modelID,
		System: documentQASystem,
		Parts:  []Part{TextPart(fmt.Sprintf("Document content:\n\n%s\n\n---\n\nQuestion: %s", extracted, req.Prompt))},
	})
	if err != nil {
		return DocumentResult{}, s.upstreamFailure(ctx, err, "1d2e3f4a-5b6c-4d7e-8f9a-0b1c2d3e4f5a", "document_qa", modelID)
	}
	if answer == "" {
		return DocumentResult{}, emptyResult(ctx, "No answer from document model", "7a8b9c0d-1e2f-4a3b-9c4d-5e6f7a8b9c0d")
	}
	return DocumentResult{ExtractedText: extracted, Answer: &answer}, nil
}

func (s *Service) extractText(ctx context.Context, document string) (string, error) {
	callCtx, cancel := s.withTimeout(ctx, s.opts.UpstreamTimeout)
	defer cancel()

	extracted, err := s.provider.Complete(callCtx, CompletionRequest{
		Model: model.DefaultVisionModel,
		Parts: []Part{TextPart(ocrPrompt), ImagePart(documentMimeType, document)},
	})
	if err != nil {
		return "", s.upstreamFailure(ctx, err, "c3d4e5f6-a7b8-4c9d-8e0f-1a2b3c4d5e6f", "document_ocr", model.DefaultVisionModel)
	}
	if extracted == "" {
		return "", emptyResult(ctx, "Failed to extract text from document", "f0e1d2c3-b4a5-4968-8776-5a4b3c2d1e0f")
	}
	return extracted, nil
}

func (s *Service) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// upstreamFailure wraps and logs an upstream error for operation.
func (s *Service) upstreamFailure(ctx context.Context, err error, code, operation, modelID string) error {
	perr := platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
		platformerrors.Message(err), err, code, map[string]any{"operation": operation, "model": modelID})
	platformerrors.LogError(s.log, perr)
	return perr
}

func emptyResult(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeEmptyResult, message, nil, code)
}
