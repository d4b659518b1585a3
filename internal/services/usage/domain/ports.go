package domain

import "context"

// LoggerPort records usage. TryLog never returns an error and never panics
type LoggerPort interface {
	TryLog(ctx context.Context, e Entry)
}
