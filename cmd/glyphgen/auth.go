package main

import (
	"net/http"

	"github.com/glyphlang/glyph/pkg/apikey"
	"github.com/glyphlang/glyph/pkg/server"
)

// apiKeyMiddleware adapts apikey.Validator to server.Middleware, gating every
// route behind a valid key instead of apikey's own http.Handler wrapper,
// since this server's routes are RouteHandlers, not http.Handlers.
func apiKeyMiddleware(validator *apikey.Validator) server.Middleware {
	return func(next server.RouteHandler) server.RouteHandler {
		return func(ctx *server.Context) error {
			headers := map[string]string{validator.HeaderName(): ctx.Request.Header.Get(validator.HeaderName())}
			queryParams := map[string]string{}
			if qp := validator.QueryParam(); qp != "" {
				queryParams[qp] = ctx.Request.URL.Query().Get(qp)
			}

			key := validator.ExtractKey(headers, queryParams)
			if key == "" {
				return server.SendError(ctx, http.StatusUnauthorized, "missing API key")
			}
			if _, err := validator.Validate(key); err != nil {
				return server.SendError(ctx, http.StatusUnauthorized, "invalid API key")
			}
			return next(ctx)
		}
	}
}
