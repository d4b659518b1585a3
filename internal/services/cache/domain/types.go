// Package domain holds the request cache types
package domain

import (
	"encoding/json"
	"time"
)

// Entry is a content addressed cached result
type Entry struct {
	Checksum  string          `json:"checksum"`
	Module    string          `json:"module"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Fresh reports whether the entry is younger than ttl at now
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) < ttl
}

// Analysis is a row of the legacy per caller analysis table
type Analysis struct {
	CallerID  string
	DomainA   string
	DomainB   string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Source tells where a hit came from
type Source string

const (
	SourceHot    Source = "redis"
	SourceShared Source = "cache"
	SourceLegacy Source = "analysis_cache"
)
