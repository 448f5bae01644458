//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/mistralhub/internal/config"
	"github.com/janhq/mistralhub/internal/domain/completion"
	"github.com/janhq/mistralhub/internal/infrastructure/mistral"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver"
)

var completionSet = wire.NewSet(
	newRestyClient,
	newMistralClient,
	wire.Bind(new(completion.Provider), new(*mistral.Client)),
	newCompletionOptions,
	completion.NewService,
)

// CreateApplication assembles the relay from its configuration and logger.
func CreateApplication(cfg *config.Config, log zerolog.Logger) *Application {
	wire.Build(
		completionSet,
		httpserver.New,
		NewApplication,
	)
	return nil
}
