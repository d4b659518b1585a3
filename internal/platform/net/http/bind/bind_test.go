package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "seogate/internal/platform/errors"
)

type lookup struct {
	Keyword  string   `json:"keyword" validate:"required,max=12"`
	Depth    int      `json:"depth,omitempty" validate:"omitempty,min=1,max=700"`
	Keywords []string `json:"keywords,omitempty" validate:"omitempty,max=3,dive,required"`
	Note     string   `validate:"omitempty,min=2"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestParseJSON(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		code      perr.ErrorCode
		field     string
		msgSubstr string
	}{
		{"ok", `{"keyword":"rank tracker","depth":10}`, 0, "", ""},
		{"empty body", ``, perr.ErrorCodeJSON, "", "empty body"},
		{"broken json", `{"keyword":`, perr.ErrorCodeJSON, "", "invalid JSON"},
		{"unknown field", `{"keyword":"a","extra":1}`, perr.ErrorCodeJSON, "", "unknown field"},
		{"trailing data", `{"keyword":"a"} {}`, perr.ErrorCodeJSON, "", "trailing"},
		{"missing required", `{"depth":3}`, perr.ErrorCodeValidation, "keyword", "keyword is a required field"},
		{"max uses short text", `{"keyword":"a","depth":701}`, perr.ErrorCodeValidation, "depth", "depth must be at most 700"},
		{"dive", `{"keyword":"a","keywords":["x",""]}`, perr.ErrorCodeValidation, "keywords[1]", ""},
		{"no json tag uses field name", `{"keyword":"a","Note":"x"}`, perr.ErrorCodeValidation, "Note", "Note must be at least 2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseJSON[lookup](post(tc.body))
			if tc.code == 0 {
				if err != nil || got.Keyword != "rank tracker" || got.Depth != 10 {
					t.Fatalf("got %+v, %v", got, err)
				}
				return
			}
			if perr.CodeOf(err) != tc.code {
				t.Fatalf("code = %v (%v), want %v", perr.CodeOf(err), err, tc.code)
			}
			w := perr.WireFrom(err)
			if w.Field != tc.field {
				t.Fatalf("field = %q, want %q", w.Field, tc.field)
			}
			if !strings.Contains(w.Message, tc.msgSubstr) {
				t.Fatalf("message = %q, want substring %q", w.Message, tc.msgSubstr)
			}
		})
	}
}

func TestParseJSON_BodyLimit(t *testing.T) {
	big := `{"keyword":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	if _, err := ParseJSON[lookup](post(big)); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected json error for oversized body, got %v", err)
	}
}

func TestValidate_InvalidTarget(t *testing.T) {
	if err := Validate(42); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("err = %v", err)
	}
}
