// Package repo persists usage entries to postgres and mirrors them to clickhouse
package repo

import (
	"context"

	"seogate/internal/modkit/repokit"
	pstrings "seogate/internal/platform/strings"
	"seogate/internal/services/usage/domain"
)

// Repo is the append only usage_log surface
type Repo interface {
	Insert(ctx context.Context, e domain.Entry) error
}

type (
	// PG binds the usage repo to a Queryer
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the postgres usage repo
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const insertSQL = `INSERT INTO usage_log
	(correlation_id, caller_id, module, endpoint, request_payload,
	 response_status, credits_used, cost_usd, attempts, error_message, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Insert appends one usage row
func (r *queries) Insert(ctx context.Context, e domain.Entry) error {
	var payload any
	if len(e.RequestPayload) > 0 {
		payload = string(e.RequestPayload)
	}
	_, err := r.q.Exec(ctx, insertSQL,
		e.CorrelationID, pstrings.SQLNull(e.CallerID), e.Module, e.Endpoint, payload,
		e.ResponseStatus, e.CreditsUsed, e.CostUSD, e.Attempts, pstrings.SQLNull(e.ErrorMessage), e.CreatedAt,
	)
	return err
}
