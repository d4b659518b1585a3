// Package repo provides postgres access for quota counters
package repo

import (
	"context"
	"time"

	"seogate/internal/modkit/repokit"
	"seogate/internal/platform/store"
	"seogate/internal/services/quota/domain"
)

// Repo is the persistence surface of the quota gate
type Repo interface {
	Get(ctx context.Context, callerID string, class domain.Class) (domain.State, error)
	// Increment resets the counter when renewal_at < now, then adds one
	Increment(ctx context.Context, callerID string, class domain.Class, now, nextRenewal time.Time) (domain.State, error)
}

type (
	// PG binds the quota repo to a Queryer
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the postgres quota repo
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Get returns the stored state, perr.ErrNotFound when the caller has none
func (r *queries) Get(ctx context.Context, callerID string, class domain.Class) (domain.State, error) {
	return store.One(ctx, r.q, scanState, `
		SELECT caller_id, quota_class, used, renewal_at, plan
		FROM quota_state
		WHERE caller_id = $1 AND quota_class = $2`, callerID, string(class))
}

// Increment is a single statement so the rollover and the charge land together
func (r *queries) Increment(ctx context.Context, callerID string, class domain.Class, now, nextRenewal time.Time) (domain.State, error) {
	return store.One(ctx, r.q, scanState, `
		INSERT INTO quota_state (caller_id, quota_class, used, renewal_at, plan, updated_at)
		VALUES ($1, $2, 1, $4, 'free', $3)
		ON CONFLICT (caller_id, quota_class) DO UPDATE
		SET used       = CASE WHEN quota_state.renewal_at < $3 THEN 1 ELSE quota_state.used + 1 END,
		    renewal_at = CASE WHEN quota_state.renewal_at < $3 THEN $4 ELSE quota_state.renewal_at END,
		    updated_at = $3
		RETURNING caller_id, quota_class, used, renewal_at, plan`,
		callerID, string(class), now, nextRenewal)
}

func scanState(row store.Row) (domain.State, error) {
	var (
		s     domain.State
		class string
	)
	if err := row.Scan(&s.CallerID, &class, &s.Used, &s.RenewalAt, &s.Plan); err != nil {
		return domain.State{}, err
	}
	s.Class = domain.Class(class)
	return s, nil
}
