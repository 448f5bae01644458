package handlers

import (
	"github.com/rs/zerolog"

	"github.com/janhq/mistralhub/internal/domain/completion"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Completion *CompletionHandler
	Model      *ModelHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(completionService *completion.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Completion: NewCompletionHandler(completionService, log),
		Model:      NewModelHandler(),
	}
}
