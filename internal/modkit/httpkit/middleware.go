package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	perr "seogate/internal/platform/errors"
	pnet "seogate/internal/platform/net"
	phttp "seogate/internal/platform/net/http"
	"seogate/internal/platform/net/middleware"
)

// DefaultRequestTimeout covers a full competitor fan out including on-page polling
const DefaultRequestTimeout = 120 * time.Second

// CommonStack is the /api/v1 stack with the default deadline
func CommonStack() []func(http.Handler) http.Handler {
	return CommonStackTimeout(DefaultRequestTimeout)
}

// CommonStackTimeout is CommonStack with an explicit deadline.
// The access log sits outside RecoverJSON so recovered panics are logged as 500s
func CommonStackTimeout(timeout time.Duration) []func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 10 * time.Second}),
		middleware.RecoverJSON,
		middleware.NoCache,
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes,
		middleware.Timeout(timeout),
	}
}

// AuthResult puts the caller on the context; a rejected token answers 200 with an auth stage Result
func AuthResult(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, writeAuthResult)
}

func writeAuthResult(w http.ResponseWriter, _ int, body any) {
	res := pnet.Result{
		Warnings: []string{},
		Error: &pnet.ResultError{
			Stage:   pnet.StageAuth,
			Message: "unauthorized",
			Code:    perr.ErrorCodeUnauthorized.String(),
		},
	}
	if wire, ok := body.(pnet.Wire); ok {
		if wire.Error != "" {
			res.Error.Message = wire.Error
		}
		res.RequestID = wire.RequestID
	}
	phttp.JSON(w, http.StatusOK, res)
}
