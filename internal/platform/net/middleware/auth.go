package middleware

import (
	"net/http"

	"seogate/internal/platform/logger"
	pnet "seogate/internal/platform/net"
)

// AuthPort resolves the caller behind a request
type AuthPort interface {
	// Parse returns the caller id and token role from the request or an error
	Parse(r *http.Request) (callerID string, role string, err error)
}

// Auth rejects unauthenticated requests and puts the caller on the context.
// A nil port lets every request through, which is how local runs without a JWT secret behave.
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			callerID, role, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithRequest(r.Context(), pnet.RequestID(r.Context()), callerID)
			ctx = pnet.WithRole(ctx, role)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), callerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
