package net_test

import (
	"encoding/json"
	"errors"
	"testing"

	perr "seogate/internal/platform/errors"
	pnet "seogate/internal/platform/net"
	kit "seogate/internal/platform/testkit"
)

func TestSuccess_WarningsNeverNull(t *testing.T) {
	r := pnet.Success(map[string]int{"a": 1}, nil)
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	kit.MustContain(t, string(b), `"ok":true`)
	kit.MustContain(t, string(b), `"warnings":[]`)
	if r.Error != nil {
		t.Fatalf("unexpected error block %+v", r.Error)
	}
}

func TestFailure_StageFromCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want pnet.Stage
		code string
	}{
		{"validation", perr.Newf(perr.ErrorCodeValidation, "bad domain"), pnet.StageValidation, "validation"},
		{"auth", perr.Unauthorizedf("nope"), pnet.StageAuth, "unauthorized"},
		{"credits", perr.New(perr.ErrorCodePaymentRequired, "credits"), pnet.StageUpstream, "credits_exhausted"},
		{"upstream", perr.New(perr.ErrorCodeUpstream, "bad payload"), pnet.StageUpstream, "upstream"},
		{"foreign", errors.New("boom"), pnet.StageInternal, "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := pnet.Failure("", tc.err)
			if r.OK {
				t.Fatalf("failure should not be ok")
			}
			if r.Error == nil || r.Error.Stage != tc.want || r.Error.Code != tc.code {
				t.Fatalf("got %+v want stage=%s code=%s", r.Error, tc.want, tc.code)
			}
			if r.Error.Message == "" {
				t.Fatalf("message should not be empty")
			}
		})
	}
}

func TestFailure_ExplicitStageWins(t *testing.T) {
	r := pnet.Failure(pnet.StageUpstream, errors.New("credentials missing"))
	if r.Error.Stage != pnet.StageUpstream {
		t.Fatalf("stage %s", r.Error.Stage)
	}
}

func TestQuotaExceeded(t *testing.T) {
	r := pnet.QuotaExceeded(3, 3)
	if r.OK || r.Error.Stage != pnet.StageQuota || r.Error.Code != pnet.CodeQuotaExceeded {
		t.Fatalf("unexpected %+v", r.Error)
	}
	kit.MustContain(t, r.Error.Message, "3/3")
}
