// Package middleware holds the http middleware the API stack is assembled from.
// chi and go-chi/cors stay behind this package
package middleware

import (
	"net/http"
	"time"

	pstrings "seogate/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// Middleware is the stdlib middleware shape
type Middleware = func(http.Handler) http.Handler

// stock chi middleware, used as is
var (
	RequestID    Middleware = chimw.RequestID
	RealIP       Middleware = chimw.RealIP
	NoCache      Middleware = chimw.NoCache
	StripSlashes Middleware = chimw.StripSlashes
)

// Timeout cancels the request context after d; handlers see ctx.Err and stop polling upstream
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// Compress gzips/deflates JSON responses at level
func Compress(level int) Middleware {
	return chimw.Compress(level, "application/json")
}

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS allows GET and POST only, the API has no other verbs
func CORS(o CORSOptions) Middleware {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}),
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
