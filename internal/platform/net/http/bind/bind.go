// Package bind decodes and validates JSON request bodies for handlers
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "seogate/internal/platform/errors"
	"seogate/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// MaxBodyBytes caps a request body; the largest request is a 1000 keyword volume lookup
const MaxBodyBytes = 1 << 20

type validatorSvc struct {
	v     *validator.Validate
	trans ut.Translator
}

var get = sync.OnceValue(func() validatorSvc {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	// messages name the json field the caller sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// the stock min and max texts switch wording per kind, keep them uniform
	for tag, text := range map[string]string{
		"min": "{0} must be at least {1}",
		"max": "{0} must be at most {1}",
	} {
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return validatorSvc{v: v, trans: trans}
})

// ParseJSON decodes one JSON object into T and validates it.
// Decode failures are ErrorCodeJSON, rule failures ErrorCodeValidation with the field attached
func ParseJSON[T any](r *http.Request) (T, error) {
	var dst T
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Debug().Err(err).Msg("request body close")
		}
	}()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dst, perr.JSONErrf("empty body")
		}
		return dst, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return dst, perr.JSONErrf("unexpected trailing data")
	}

	if err := Validate(dst); err != nil {
		return dst, err
	}
	return dst, nil
}

// Validate runs the struct rules on v and reports the first failing field
func Validate(v any) error {
	svc := get()
	err := svc.v.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return perr.WithFieldChain(perr.New(perr.ErrorCodeValidation, fe.Translate(svc.trans)), fe.Field())
	}
	// InvalidValidationError, a programming error on our side
	logger.Get().Error().Err(err).Msg("validator misuse")
	return perr.Wrap(err, perr.ErrorCodeValidation, "validation error")
}
