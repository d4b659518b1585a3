// Package domain holds the usage log types
package domain

import (
	"encoding/json"
	"time"
)

// Entry is one audit row per logical upstream call
type Entry struct {
	CorrelationID  string
	CallerID       string
	Module         string
	Endpoint       string
	RequestPayload json.RawMessage
	ResponseStatus int
	Attempts       int
	CreditsUsed    *int
	CostUSD        *float64
	ErrorMessage   string
	Duration       time.Duration
	CreatedAt      time.Time
}

// Failed reports whether the call ended without a usable response
func (e Entry) Failed() bool { return e.ErrorMessage != "" }
