package net_test

import (
	"errors"
	"net/http"
	"testing"

	perr "seogate/internal/platform/errors"
	pnet "seogate/internal/platform/net"
)

func TestOK_CarriesData(t *testing.T) {
	status, w := pnet.OK([]string{"a"}, "rid")
	if status != http.StatusOK || w.StatusCode != status || w.Status != "OK" {
		t.Fatalf("envelope = %d %+v", status, w)
	}
	if d, _ := w.Data.([]string); len(d) != 1 || w.RequestID != "rid" {
		t.Fatalf("data/rid lost: %+v", w)
	}
}

func TestError_Envelope(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		want     int
		wantCode perr.ErrorCode
	}{
		{"nil is ok", nil, http.StatusOK, 0},
		{"unauthorized", perr.New(perr.ErrorCodeUnauthorized, "bad token"), http.StatusUnauthorized, perr.ErrorCodeUnauthorized},
		{"panic", perr.PanicErrf("boom"), http.StatusInternalServerError, perr.ErrorCodePanic},
		{"plain error", errors.New("x"), http.StatusInternalServerError, perr.ErrorCodeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, w := pnet.Error(tc.err, "rid")
			if status != tc.want || w.StatusCode != tc.want {
				t.Fatalf("status = %d/%d, want %d", status, w.StatusCode, tc.want)
			}
			if w.Code != tc.wantCode {
				t.Fatalf("code = %v, want %v", w.Code, tc.wantCode)
			}
			if (tc.err == nil) != (w.Error == "") {
				t.Fatalf("error text = %q for err %v", w.Error, tc.err)
			}
			if w.Data != nil || w.RequestID != "rid" {
				t.Fatalf("unexpected envelope %+v", w)
			}
		})
	}
}
