package http

import (
	"net/http"

	pnet "seogate/internal/platform/net"
	"seogate/internal/platform/net/http/bind"
)

// ResultHandler binds T and writes the in-band Result fn returns, always at 200.
// Bind and validation failures become a validation stage result.
func ResultHandler[T any](fn func(*http.Request, T) pnet.Result) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := bind.ParseJSON[T](r)
		var res pnet.Result
		if err != nil {
			res = pnet.Failure(pnet.StageValidation, err)
		} else {
			res = fn(r, in)
		}
		if res.Warnings == nil {
			res.Warnings = []string{}
		}
		res.RequestID = pnet.RequestID(r.Context())
		JSON(w, http.StatusOK, res)
	}
}
