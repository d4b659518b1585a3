package repo

import (
	"context"

	"seogate/internal/platform/store"
	"seogate/internal/services/usage/domain"
)

// EventsTable is the clickhouse mirror of usage_log
const EventsTable = "usage_events"

const eventsDDL = `CREATE TABLE IF NOT EXISTS usage_events (
	created_at      DateTime64(3, 'UTC'),
	correlation_id  String,
	caller_id       String,
	module          LowCardinality(String),
	endpoint        LowCardinality(String),
	response_status UInt16,
	attempts        UInt8,
	credits_used    UInt32,
	cost_usd        Float64,
	duration_ms     UInt32,
	failed          UInt8
) ENGINE = MergeTree
ORDER BY (module, created_at)`

// Mirror writes usage events to clickhouse for spend analytics
type Mirror struct {
	ch store.Clickhouse
}

// NewMirror returns nil when ch is nil so callers can skip the mirror cheaply
func NewMirror(ch store.Clickhouse) *Mirror {
	if ch == nil {
		return nil
	}
	return &Mirror{ch: ch}
}

// EnsureTable creates usage_events when missing
func (m *Mirror) EnsureTable(ctx context.Context) error {
	return m.ch.Exec(ctx, eventsDDL)
}

// Insert appends one event
func (m *Mirror) Insert(ctx context.Context, e domain.Entry) error {
	return m.ch.Insert(ctx, EventsTable, [][]any{eventRow(e)})
}

// eventRow orders values like the usage_events columns with their exact go types
func eventRow(e domain.Entry) []any {
	var credits uint32
	if e.CreditsUsed != nil && *e.CreditsUsed > 0 {
		credits = uint32(*e.CreditsUsed)
	}
	var cost float64
	if e.CostUSD != nil {
		cost = *e.CostUSD
	}
	var failed uint8
	if e.Failed() {
		failed = 1
	}
	return []any{
		e.CreatedAt.UTC(),
		e.CorrelationID,
		e.CallerID,
		e.Module,
		e.Endpoint,
		clampU16(e.ResponseStatus),
		uint8(min(max(e.Attempts, 0), 255)),
		credits,
		cost,
		uint32(max(e.Duration.Milliseconds(), 0)),
		failed,
	}
}

func clampU16(n int) uint16 {
	return uint16(min(max(n, 0), 65535))
}
