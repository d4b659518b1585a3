package domain

import (
	"context"
	"errors"

	"seogate/internal/adapters/dataforseo"
)

// Op names one kind of sub operation of a report
type Op string

const (
	OpKeywords  Op = "keywords"
	OpBacklinks Op = "backlinks"
	OpOnPage    Op = "onpage"
)

// Side says which domain a sub operation was about
type Side string

const (
	SideYours      Side = "your_domain"
	SideCompetitor Side = "competitor_domain"
)

// Reason classifies a sub operation failure
type Reason string

const (
	ReasonFailed  Reason = "failed"
	ReasonTimeout Reason = "timeout"
)

// WarnCacheBypass tags reports built with non default parameters, which are never cached
const WarnCacheBypass = "cache_bypass_custom_params"

// Failure describes why one sub operation produced no data
type Failure struct {
	Op     Op
	Side   Side
	Reason Reason
	Err    error
}

// Warning is the stable identifier a failure is reported as, e.g. backlinks_your_domain_failed
func (f Failure) Warning() string {
	return string(f.Op) + "_" + string(f.Side) + "_" + string(f.Reason)
}

// Outcome is either a value or a failure, never both
type Outcome[T any] struct {
	Value   T
	Failure *Failure
}

// OK reports whether the sub operation succeeded
func (o Outcome[T]) OK() bool { return o.Failure == nil }

// Or returns the value, or def when the sub operation failed
func (o Outcome[T]) Or(def T) T {
	if o.Failure != nil {
		return def
	}
	return o.Value
}

// Succeeded wraps a value
func Succeeded[T any](v T) Outcome[T] { return Outcome[T]{Value: v} }

// Failed wraps err; poll exhaustion and deadlines read as timeouts
func Failed[T any](op Op, side Side, err error) Outcome[T] {
	reason := ReasonFailed
	if errors.Is(err, dataforseo.ErrPollTimeout) || errors.Is(err, context.DeadlineExceeded) {
		reason = ReasonTimeout
	}
	return Outcome[T]{Failure: &Failure{Op: op, Side: side, Reason: reason, Err: err}}
}
