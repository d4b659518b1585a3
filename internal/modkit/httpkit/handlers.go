// Package httpkit is what modules mount routes with, so they never import
// the platform http package directly
package httpkit

import (
	"net/http"

	perrs "seogate/internal/platform/errors"
	pnet "seogate/internal/platform/net"
	phttp "seogate/internal/platform/net/http"
)

type (
	Router   = phttp.Router
	Handler  = phttp.Handler
	Response = phttp.Response

	// Result is the in-band body of feature endpoints
	Result = pnet.Result
)

// Call adapts a bodyless handler to the envelope writer. A returned Response
// is written as is, any other value is wrapped as 200 data
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) phttp.Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(phttp.Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

// Get mounts fn under GET path
func Get(r Router, path string, fn func(*http.Request) (any, error)) { r.Get(path, Call(fn)) }

// PostResult mounts a JSON body handler that always answers with an in-band Result
func PostResult[T any](r Router, path string, h func(*http.Request, T) Result) {
	r.Post(path, phttp.ResultHandler(h))
}

// Caller is the authenticated caller id, an unauthorized error when anonymous
func Caller(r *http.Request) (string, error) {
	if id := pnet.CallerID(r.Context()); id != "" {
		return id, nil
	}
	return "", perrs.Unauthorizedf("missing bearer token")
}
