package domain

import (
	"context"
	"time"
)

// CachePort is the request cache consumed by the api modules.
// A lookup miss is (Entry{}, "", false, nil); storage errors degrade to a miss at the caller.
type CachePort interface {
	Lookup(ctx context.Context, checksum string) (Entry, Source, bool, error)
	LookupAnalysis(ctx context.Context, callerID, domainA, domainB, checksum string) (Entry, bool, error)
	Store(ctx context.Context, checksum, module string, payload any) error
}

// PrunePort is used by the janitor
type PrunePort interface {
	PruneCache(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error)
	PruneAnalysis(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error)
}
