package net

import (
	"fmt"

	perr "seogate/internal/platform/errors"
)

// Stage names the phase of a request that produced an in-band error
type Stage string

const (
	StageValidation Stage = "validation"
	StageAuth       Stage = "auth"
	StageQuota      Stage = "quota"
	StageUpstream   Stage = "upstream"
	StageInternal   Stage = "internal"
)

// CodeQuotaExceeded is the in-band code for an exhausted freemium allowance
const CodeQuotaExceeded = "quota_exceeded"

// ResultError is the in-band error block of a Result
type ResultError struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Result is the body every feature endpoint answers with, always at HTTP 200.
// Failures travel in Error so callers can tell quota and partial states from transport faults.
type Result struct {
	OK        bool         `json:"ok"`
	Warnings  []string     `json:"warnings"`
	Data      any          `json:"data,omitempty"`
	Error     *ResultError `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// Success builds an ok result; warnings is never serialized as null
func Success(data any, warnings []string) Result {
	if warnings == nil {
		warnings = []string{}
	}
	return Result{OK: true, Warnings: warnings, Data: data}
}

// Failure builds a failed result from err, deriving the stage from its code when stage is empty
func Failure(stage Stage, err error) Result {
	if stage == "" {
		stage = StageOf(err)
	}
	w := perr.WireFrom(err)
	msg := w.Message
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return Result{
		OK:       false,
		Warnings: []string{},
		Error:    &ResultError{Stage: stage, Message: msg, Code: w.Code.String()},
	}
}

// QuotaExceeded builds the structured upgrade prompt result
func QuotaExceeded(used, limit int) Result {
	return Result{
		OK:       false,
		Warnings: []string{},
		Error: &ResultError{
			Stage:   StageQuota,
			Message: quotaMessage(used, limit),
			Code:    CodeQuotaExceeded,
		},
	}
}

func quotaMessage(used, limit int) string {
	if limit <= 0 {
		return "free plan does not include this report, upgrade to continue"
	}
	return fmt.Sprintf("free report allowance used (%d/%d), upgrade to continue", used, limit)
}

// StageOf classifies an error by its project code
func StageOf(err error) Stage {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeInvalidArgument, perr.ErrorCodeValidation, perr.ErrorCodeJSON:
		return StageValidation
	case perr.ErrorCodeUnauthorized, perr.ErrorCodeForbidden:
		return StageAuth
	case perr.ErrorCodePaymentRequired, perr.ErrorCodeUpstream,
		perr.ErrorCodeUnavailable, perr.ErrorCodeTooManyRequests:
		return StageUpstream
	default:
		return StageInternal
	}
}
