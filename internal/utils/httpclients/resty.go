package httpclients

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

type httpClientStartsAt struct{}

// NewClient builds a resty client that logs every exchange at debug level.
// Bodies are not logged: requests routinely carry base64 images and documents.
func NewClient(clientName string, log zerolog.Logger) *resty.Client {
	client := resty.New()
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		ctx := context.WithValue(r.Context(), httpClientStartsAt{}, time.Now())
		r.SetContext(ctx)
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		startTime, _ := r.Request.Context().Value(httpClientStartsAt{}).(time.Time)
		event := log.Debug().
			Str("request_id", platformerrors.RequestIDFromContext(r.Request.Context())).
			Str("client", clientName).
			Int("status", r.StatusCode()).
			Bool("streaming", r.Request.DoNotParseResponse).
			Dur("latency", time.Since(startTime))
		if raw := r.Request.RawRequest; raw != nil {
			event = event.Str("method", raw.Method).Str("path", raw.URL.Path)
		}
		event.Msg("HTTP client request")
		return nil
	})
	return client
}
