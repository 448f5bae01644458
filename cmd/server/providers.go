package main

import (
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/janhq/mistralhub/internal/config"
	"github.com/janhq/mistralhub/internal/domain/completion"
	"github.com/janhq/mistralhub/internal/infrastructure/mistral"
	"github.com/janhq/mistralhub/internal/utils/httpclients"
)

func newRestyClient(log zerolog.Logger) *resty.Client {
	return httpclients.NewClient("mistral", log)
}

func newMistralClient(cfg *config.Config, client *resty.Client, log zerolog.Logger) *mistral.Client {
	return mistral.NewClient(client, cfg.MistralBaseURL, cfg.MistralAPIKey, cfg.ServiceName, log)
}

func newCompletionOptions(cfg *config.Config) completion.Options {
	return completion.Options{
		StreamTimeout:   cfg.RelayStreamTimeout,
		UpstreamTimeout: cfg.UpstreamTimeout,
		StrictModels:    cfg.StrictModelCatalog,
	}
}
