package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/mistralhub/internal/interfaces/httpserver/handlers"
)

// mirrorPrefixes lists the groups every relay route is registered under.
// "/api" keeps the paths browser clients of the hosted app already call.
var mirrorPrefixes = []string{"/", "/api"}

// Provider registers the relay routes.
type Provider struct {
	handlers *handlers.Provider
}

// NewProvider builds the route registrar.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{
		handlers: handlerProvider,
	}
}

// Register attaches the relay routes at the root and under /api.
func (p *Provider) Register(engine *gin.Engine) {
	for _, prefix := range mirrorPrefixes {
		group := engine.Group(prefix)
		registerCompletionRoutes(group, p.handlers.Completion)
		registerModelRoutes(group, p.handlers.Model)
	}
}
