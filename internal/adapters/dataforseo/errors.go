package dataforseo

import (
	"errors"
	"fmt"
	"net/http"

	perr "seogate/internal/platform/errors"
)

// Kind classifies a gateway failure
type Kind uint8

const (
	KindCredentialsMissing Kind = iota + 1
	KindCreditsExhausted
	KindRateLimited
	KindUpstreamServer
	KindUpstreamClient
	KindNetwork
	KindTask
	KindDecode
	KindEncode
)

var kindNames = map[Kind]string{
	KindCredentialsMissing: "credentials_missing",
	KindCreditsExhausted:   "credits_exhausted",
	KindRateLimited:        "rate_limited",
	KindUpstreamServer:     "upstream_server",
	KindUpstreamClient:     "upstream_client",
	KindNetwork:            "network",
	KindTask:               "task",
	KindDecode:             "decode",
	KindEncode:             "encode",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// GatewayError is returned by the Client for every terminal failure
type GatewayError struct {
	Kind       Kind
	StatusCode int // HTTP status, or the task status code for KindTask; 0 when no response
	Endpoint   string
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("dataforseo %s %s", e.Endpoint, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes a coded perr error so perr.CodeOf and perr.WireFrom see through the gateway error
func (e *GatewayError) Unwrap() error {
	msg := e.Message
	if msg == "" {
		msg = "dataforseo " + e.Kind.String()
	}
	if e.Err != nil {
		return perr.Wrap(e.Err, e.Code(), msg)
	}
	return perr.New(e.Code(), msg)
}

// IsRateLimit reports a 429
func (e *GatewayError) IsRateLimit() bool { return e.StatusCode == http.StatusTooManyRequests && e.Kind != KindTask }

// IsCreditsExhausted reports a 402
func (e *GatewayError) IsCreditsExhausted() bool { return e.Kind == KindCreditsExhausted }

// Retryable reports whether the failure class is one the retry loop would retry
func (e *GatewayError) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindUpstreamServer, KindNetwork:
		return true
	}
	return false
}

// Code maps the failure class onto the project error codes
func (e *GatewayError) Code() perr.ErrorCode {
	switch e.Kind {
	case KindCreditsExhausted:
		return perr.ErrorCodePaymentRequired
	case KindRateLimited:
		return perr.ErrorCodeTooManyRequests
	case KindUpstreamServer, KindNetwork:
		return perr.ErrorCodeUnavailable
	case KindUpstreamClient, KindTask, KindDecode:
		return perr.ErrorCodeUpstream
	case KindEncode:
		return perr.ErrorCodeInvalidArgument
	default:
		return perr.ErrorCodeUnknown
	}
}

// AsGatewayError unwraps err into a *GatewayError
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// IsCreditsExhausted reports whether err carries an upstream 402
func IsCreditsExhausted(err error) bool {
	ge, ok := AsGatewayError(err)
	return ok && ge.IsCreditsExhausted()
}

// IsSystemic reports failures no sibling sub-operation can get past (missing credentials)
func IsSystemic(err error) bool {
	ge, ok := AsGatewayError(err)
	return ok && ge.Kind == KindCredentialsMissing
}

func statusKind(status int) Kind {
	switch {
	case status == http.StatusPaymentRequired:
		return KindCreditsExhausted
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindUpstreamServer
	default:
		return KindUpstreamClient
	}
}
