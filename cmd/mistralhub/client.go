package main

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/janhq/mistralhub/internal/chatclient"
	"github.com/janhq/mistralhub/internal/chatclient/store"
	"github.com/janhq/mistralhub/internal/chatclient/upload"
	"github.com/janhq/mistralhub/internal/infrastructure/kvstore"
	"github.com/janhq/mistralhub/internal/infrastructure/logger"
	"github.com/janhq/mistralhub/internal/utils/httpclients"
)

// clientOptions is the client configuration: environment first, flags override.
type clientOptions struct {
	ServerURL string `env:"MISTRALHUB_SERVER_URL" envDefault:"http://localhost:8080"`
	StoreDSN  string `env:"MISTRALHUB_STORE_DSN" envDefault:"~/.mistralhub/store.db"`
	Model     string `env:"MISTRALHUB_MODEL"`
	LogLevel  string `env:"MISTRALHUB_LOG_LEVEL" envDefault:"warn"`
}

func (o *clientOptions) resolve(cmd *cobra.Command) error {
	if err := env.Parse(o); err != nil {
		return fmt.Errorf("parse env config: %w", err)
	}
	flags := cmd.Flags()
	for flag, target := range map[string]*string{
		"server":    &o.ServerURL,
		"store":     &o.StoreDSN,
		"model":     &o.Model,
		"log-level": &o.LogLevel,
	} {
		if flags.Changed(flag) {
			v, _ := flags.GetString(flag)
			*target = v
		}
	}
	return nil
}

// clientApp holds the wired client for one command invocation.
type clientApp struct {
	api     *chatclient.API
	session *chatclient.Session
	uploads *upload.Registry
	kv      kvstore.KV
	log     zerolog.Logger
}

func newClientApp(ctx context.Context, o *clientOptions) (*clientApp, error) {
	log, err := logger.New(logger.Options{Level: o.LogLevel, Format: "console", Output: os.Stderr})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	kv := kvstore.Open(ctx, o.StoreDSN, log)
	uploads := upload.NewRegistry()
	api := chatclient.NewAPI(httpclients.NewClient("relay", log), o.ServerURL)
	session := chatclient.NewSession(api, store.New(kv, log), uploads, o.Model, log)
	session.Restore(ctx)
	if o.Model != "" {
		if err := session.ChangeModel(ctx, o.Model); err != nil {
			_ = kv.Close()
			return nil, err
		}
	}

	return &clientApp{
		api:     api,
		session: session,
		uploads: uploads,
		kv:      kv,
		log:     log,
	}, nil
}

func (a *clientApp) Close() {
	if err := a.uploads.Close(); err != nil {
		a.log.Debug().Err(err).Msg("release uploads")
	}
	if err := a.kv.Close(); err != nil {
		a.log.Debug().Err(err).Msg("close store")
	}
}

// withApp runs fn against a freshly wired client and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *clientApp) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := newClientApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}
