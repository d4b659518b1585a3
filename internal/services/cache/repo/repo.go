// Package repo provides postgres access for the request cache
package repo

import (
	"context"
	"time"

	"seogate/internal/modkit/repokit"
	"seogate/internal/platform/store"
	"seogate/internal/services/cache/domain"
)

// Repo is the persistence surface of the cache
type Repo interface {
	Get(ctx context.Context, checksum string, since time.Time) (domain.Entry, error)
	Upsert(ctx context.Context, e domain.Entry) error
	LatestAnalysis(ctx context.Context, callerID, domainA, domainB string, since time.Time) (domain.Analysis, error)
	DeleteBefore(ctx context.Context, table Table, before time.Time) (int64, error)
	CountBefore(ctx context.Context, table Table, before time.Time) (int64, error)
}

// Table names a prunable table
type Table string

const (
	TableCache    Table = "cache"
	TableAnalysis Table = "analysis_cache"
)

type (
	// PG binds the cache repo to a Queryer
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the postgres cache repo
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Get returns the entry for checksum created at or after since, perr.ErrNotFound otherwise
func (r *queries) Get(ctx context.Context, checksum string, since time.Time) (domain.Entry, error) {
	return store.One(ctx, r.q, scanEntry, `
		SELECT checksum, module, payload, created_at
		FROM cache
		WHERE checksum = $1 AND created_at >= $2`, checksum, since)
}

// Upsert writes e, replacing any previous entry with the same checksum
func (r *queries) Upsert(ctx context.Context, e domain.Entry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cache (checksum, module, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (checksum) DO UPDATE
		SET module = EXCLUDED.module, payload = EXCLUDED.payload, created_at = EXCLUDED.created_at`,
		e.Checksum, e.Module, string(e.Payload), e.CreatedAt)
	return err
}

// LatestAnalysis returns the newest legacy analysis of the pair since the cutoff
func (r *queries) LatestAnalysis(ctx context.Context, callerID, domainA, domainB string, since time.Time) (domain.Analysis, error) {
	return store.One(ctx, r.q, scanAnalysis, `
		SELECT caller_id, domain_a, domain_b, payload, created_at
		FROM analysis_cache
		WHERE caller_id = $1 AND domain_a = $2 AND domain_b = $3 AND created_at >= $4
		ORDER BY created_at DESC
		LIMIT 1`, callerID, domainA, domainB, since)
}

// DeleteBefore removes rows older than before
func (r *queries) DeleteBefore(ctx context.Context, table Table, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, "DELETE FROM "+table.ident()+" WHERE created_at < $1", before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountBefore counts rows older than before
func (r *queries) CountBefore(ctx context.Context, table Table, before time.Time) (int64, error) {
	return store.Scalar[int64](ctx, r.q, "SELECT count(*) FROM "+table.ident()+" WHERE created_at < $1", before)
}

// ident only ever yields one of the known table names
func (t Table) ident() string {
	if t == TableAnalysis {
		return string(TableAnalysis)
	}
	return string(TableCache)
}

func scanEntry(row store.Row) (domain.Entry, error) {
	var e domain.Entry
	var payload []byte
	if err := row.Scan(&e.Checksum, &e.Module, &payload, &e.CreatedAt); err != nil {
		return domain.Entry{}, err
	}
	e.Payload = payload
	return e, nil
}

func scanAnalysis(row store.Row) (domain.Analysis, error) {
	var a domain.Analysis
	var payload []byte
	if err := row.Scan(&a.CallerID, &a.DomainA, &a.DomainB, &payload, &a.CreatedAt); err != nil {
		return domain.Analysis{}, err
	}
	a.Payload = payload
	return a, nil
}
