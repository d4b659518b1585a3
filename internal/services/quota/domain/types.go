// Package domain holds the freemium quota types
package domain

import "time"

// Class names a metered feature
type Class string

// ClassCompetitorReport meters free competitor analyses
const ClassCompetitorReport Class = "competitor_report"

// PlanFree is the only plan the gate applies to
const PlanFree = "free"

// State is a caller's counter for one quota class
type State struct {
	CallerID  string
	Class     Class
	Used      int
	RenewalAt time.Time
	Plan      string
}

// Rolled returns s as seen at now: past its renewal the counter restarts at 0
// and the renewal moves to now+window. The result is never persisted on its own.
func (s State) Rolled(now time.Time, window time.Duration) State {
	if now.After(s.RenewalAt) {
		s.Used = 0
		s.RenewalAt = now.Add(window)
	}
	return s
}

// Decision is the outcome of a quota check
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Bypass    bool      `json:"bypass"`
	RenewalAt time.Time `json:"renewal_at"`
}
