package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"seogate/internal/platform/store"
	"seogate/internal/platform/store/storetest"
	"seogate/internal/services/usage/domain"
)

func TestInsert_Args(t *testing.T) {
	t.Parallel()

	q := &storetest.Querier{}
	r := NewPG().Bind(q)
	credits, cost := 1, 0.0103
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	err := r.Insert(context.Background(), domain.Entry{
		CorrelationID:  "corr-1",
		CallerID:       "user-1",
		Module:         "competitor",
		Endpoint:       "/backlinks/summary/live",
		RequestPayload: []byte(`[{"target":"example.com"}]`),
		ResponseStatus: 200,
		Attempts:       2,
		CreditsUsed:    &credits,
		CostUSD:        &cost,
		CreatedAt:      at,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	call, ok := q.LastExec()
	if !ok || !strings.Contains(call.SQL, "INSERT INTO usage_log") {
		t.Fatalf("sql = %q", call.SQL)
	}
	if len(call.Args) != 11 {
		t.Fatalf("args = %d, want 11", len(call.Args))
	}
	if call.Args[1] != "user-1" || call.Args[4] != `[{"target":"example.com"}]` || call.Args[5] != 200 || call.Args[8] != 2 {
		t.Fatalf("args = %v", call.Args)
	}
}

func TestInsert_NilPayloadIsNull(t *testing.T) {
	t.Parallel()

	q := &storetest.Querier{}
	if err := NewPG().Bind(q).Insert(context.Background(), domain.Entry{Module: "m", Endpoint: "/e"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	call, _ := q.LastExec()
	if call.Args[1] != nil || call.Args[4] != nil || call.Args[9] != nil {
		t.Fatalf("caller, payload and error args = %v %v %v, want nil", call.Args[1], call.Args[4], call.Args[9])
	}
}

type recordingCH struct {
	execs []string
	table string
	rows  [][]any
}

func (r *recordingCH) Insert(_ context.Context, table string, data any) error {
	r.table = table
	r.rows = data.([][]any)
	return nil
}
func (r *recordingCH) Exec(_ context.Context, sql string, _ ...any) error {
	r.execs = append(r.execs, sql)
	return nil
}
func (r *recordingCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (r *recordingCH) Close() error                                            { return nil }

func TestMirror_RowShape(t *testing.T) {
	t.Parallel()

	if NewMirror(nil) != nil {
		t.Fatal("NewMirror(nil) should be nil")
	}
	ch := &recordingCH{}
	m := NewMirror(ch)
	if err := m.EnsureTable(context.Background()); err != nil || len(ch.execs) != 1 || !strings.Contains(ch.execs[0], "usage_events") {
		t.Fatalf("EnsureTable: %v %v", err, ch.execs)
	}

	credits, cost := 3, 0.5
	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	err := m.Insert(context.Background(), domain.Entry{
		CorrelationID:  "c",
		Module:         "competitor",
		Endpoint:       "/x",
		ResponseStatus: 503,
		Attempts:       4,
		CreditsUsed:    &credits,
		CostUSD:        &cost,
		ErrorMessage:   "boom",
		Duration:       1500 * time.Millisecond,
		CreatedAt:      at,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if ch.table != EventsTable || len(ch.rows) != 1 || len(ch.rows[0]) != 11 {
		t.Fatalf("table=%s rows=%v", ch.table, ch.rows)
	}
	row := ch.rows[0]
	if row[0].(time.Time).Location() != time.UTC {
		t.Fatal("created_at should be UTC")
	}
	if row[5].(uint16) != 503 || row[6].(uint8) != 4 || row[7].(uint32) != 3 || row[8].(float64) != 0.5 ||
		row[9].(uint32) != 1500 || row[10].(uint8) != 1 {
		t.Fatalf("row = %v", row)
	}
}
