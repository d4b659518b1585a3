package net

import (
	"net/http"

	perr "seogate/internal/platform/errors"
)

// Wire is the status-bearing envelope used for transport level failures
// (auth, panics, not found) where an in-band Result does not apply
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

func envelope(status int, reqID string) Wire {
	return Wire{StatusCode: status, Status: http.StatusText(status), RequestID: reqID}
}

// OK wraps data in a 200 envelope
func OK(data any, reqID string) (int, Wire) {
	w := envelope(http.StatusOK, reqID)
	w.Data = data
	return w.StatusCode, w
}

// Error maps err onto its HTTP status; a nil err is an empty OK
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return OK(nil, reqID)
	}
	w := envelope(perr.HTTPStatus(err), reqID)
	ew := perr.WireFrom(err)
	w.Code, w.Error = ew.Code, ew.Message
	return w.StatusCode, w
}
