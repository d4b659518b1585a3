package store

import (
	"context"
	"time"
)

// sql result surface, satisfied by the pgx adapter and by storetest fakes
type (
	Row interface {
		Scan(dest ...any) error
	}

	Rows interface {
		Row
		Next() bool
		Err() error
		Close()
		Columns() []string
	}

	CommandTag interface {
		String() string
		RowsAffected() int64
	}
)

// RowQuerier is what repos run statements against, a pool or an open tx
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn in a transaction,
// committing when fn returns nil
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the usage log sink: batch inserts plus ad hoc reads
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// KV backs the hot cache copy. A miss is (nil, false, nil)
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }
