package handlers

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/janhq/mistralhub/internal/domain/completion"
	"github.com/janhq/mistralhub/internal/domain/stream"
	"github.com/janhq/mistralhub/internal/infrastructure/metrics"
	"github.com/janhq/mistralhub/internal/infrastructure/observability"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver/requests"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver/responses"
	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

// CompletionHandler invokes the completion service for the chat, vision and document routes.
type CompletionHandler struct {
	service *completion.Service
	log     zerolog.Logger
}

func NewCompletionHandler(service *completion.Service, log zerolog.Logger) *CompletionHandler {
	return &CompletionHandler{
		service: service,
		log:     log.With().Str("component", "completion-handler").Logger(),
	}
}

// OpenChatStream validates the request and opens the upstream stream. Errors
// returned here are answered as ordinary JSON responses.
func (h *CompletionHandler) OpenChatStream(ctx context.Context, req requests.ChatRequest) (*completion.ChatStream, error) {
	cs, err := h.service.OpenChatStream(ctx, req.ToDomain())
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
			metrics.RecordUpstreamError("chat", metrics.PhasePreStream)
		}
		return nil, err
	}
	return cs, nil
}

// RelayChatStream pumps cs into w as SSE frames.
func (h *CompletionHandler) RelayChatStream(ctx context.Context, cs *completion.ChatStream, w io.Writer) completion.RelayResult {
	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	result := h.service.Relay(ctx, cs, stream.NewWriter(w))

	outcome := metrics.OutcomeDone
	switch {
	case result.ClientGone:
		outcome = metrics.OutcomeClientGone
	case result.UpstreamErr != nil:
		outcome = metrics.OutcomeError
		metrics.RecordUpstreamError("chat", metrics.PhaseMidStream)
		observability.RecordError(ctx, result.UpstreamErr)
	}
	metrics.RecordStream(cs.Model(), outcome, result.Fragments, result.FirstDelta.Seconds())
	observability.AddSpanAttributes(ctx,
		attribute.Int("relay.fragments", result.Fragments),
		attribute.String("relay.outcome", outcome),
	)

	if result.ClientGone {
		h.log.Info().Str("model", cs.Model()).Int("fragments", result.Fragments).Msg("client disconnected, upstream stream released")
	}
	return result
}

// Vision answers a question about an image.
func (h *CompletionHandler) Vision(ctx context.Context, req requests.VisionRequest) (responses.ContentResponse, error) {
	content, err := h.service.Vision(ctx, req.ToDomain())
	if err != nil {
		recordSingleShotError(err, "vision")
		return responses.ContentResponse{}, err
	}
	return responses.ContentResponse{Content: content}, nil
}

// Document extracts text and optionally answers a question about it.
func (h *CompletionHandler) Document(ctx context.Context, req requests.DocumentRequest) (responses.DocumentResponse, error) {
	result, err := h.service.Document(ctx, req.ToDomain())
	if err != nil {
		recordSingleShotError(err, "document")
		return responses.DocumentResponse{}, err
	}
	return responses.DocumentResponse{ExtractedText: result.ExtractedText, Answer: result.Answer}, nil
}

func recordSingleShotError(err error, operation string) {
	if platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) ||
		platformerrors.IsErrorType(err, platformerrors.ErrorTypeEmptyResult) {
		metrics.RecordUpstreamError(operation, metrics.PhaseSingle)
	}
}
