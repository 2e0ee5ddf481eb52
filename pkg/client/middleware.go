package client

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"
)

// APIKey returns a middleware that sets header to key on every request.
// An empty header defaults to Authorization; an empty key is a no-op.
func APIKey(header, key string) Middleware {
	if header == "" {
		header = "Authorization"
	}
	return func(_ context.Context, req *http.Request) error {
		if key != "" {
			req.Header.Set(header, key)
		}
		return nil
	}
}

// BearerToken returns a middleware that injects a bearer token.
func BearerToken(token string) Middleware {
	return func(_ context.Context, req *http.Request) error {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// RateLimit returns a middleware that blocks until limiter admits the request
// or ctx is done.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(ctx context.Context, _ *http.Request) error {
		return limiter.Wait(ctx)
	}
}
