package domain

import "context"

// GatePort is consumed by the metered api modules
type GatePort interface {
	// Check reads the caller's quota without changing it
	Check(ctx context.Context, callerID string, class Class) (Decision, error)
	// Consume applies any pending rollover and the increment in one write
	Consume(ctx context.Context, callerID string, class Class) (State, error)
}
