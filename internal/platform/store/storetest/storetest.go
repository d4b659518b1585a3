// Package storetest provides scriptable fakes for the store sql seams
package storetest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"seogate/internal/platform/store"

	"github.com/jackc/pgx/v5"
)

// Tag is a CommandTag carrying only a row count
type Tag int64

func (t Tag) String() string      { return fmt.Sprintf("OK %d", int64(t)) }
func (t Tag) RowsAffected() int64 { return int64(t) }

// Rows is an in-memory result set that assigns by reflection on Scan
type Rows struct {
	Cols   []string
	Data   [][]any
	Fail   error
	Closed bool
	idx    int
}

// NewRows builds a result set positioned before the first row
func NewRows(cols []string, data ...[]any) *Rows {
	return &Rows{Cols: cols, Data: data, idx: -1}
}

func (r *Rows) Columns() []string { return r.Cols }
func (r *Rows) Err() error        { return r.Fail }
func (r *Rows) Close()            { r.Closed = true }

func (r *Rows) Next() bool {
	if r.Fail != nil {
		return false
	}
	r.idx++
	return r.idx < len(r.Data)
}

func (r *Rows) Scan(dest ...any) error {
	if r.Fail != nil {
		return r.Fail
	}
	if r.idx < 0 || r.idx >= len(r.Data) {
		return errors.New("storetest: scan out of bounds")
	}
	return assign(r.Data[r.idx], dest)
}

func assign(row []any, dest []any) error {
	if len(dest) != len(row) {
		return fmt.Errorf("storetest: scan %d dest for %d columns", len(dest), len(row))
	}
	for i := range dest {
		dv := reflect.ValueOf(dest[i])
		if dv.Kind() != reflect.Pointer || !dv.Elem().CanSet() {
			return errors.New("storetest: dest not settable")
		}
		el := dv.Elem()
		if row[i] == nil {
			el.Set(reflect.Zero(el.Type()))
			continue
		}
		val := reflect.ValueOf(row[i])
		switch {
		case val.Type().AssignableTo(el.Type()):
			el.Set(val)
		case el.Kind() == reflect.Pointer && val.Type().AssignableTo(el.Type().Elem()):
			p := reflect.New(el.Type().Elem())
			p.Elem().Set(val)
			el.Set(p)
		case val.Type().ConvertibleTo(el.Type()):
			el.Set(val.Convert(el.Type()))
		default:
			return fmt.Errorf("storetest: cannot assign %T to %s", row[i], el.Type())
		}
	}
	return nil
}

type row struct {
	rows *Rows
	err  error
}

// Scan reads the first row or reports pgx.ErrNoRows like the real driver
func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.rows == nil || !r.rows.Next() {
		return pgx.ErrNoRows
	}
	return r.rows.Scan(dest...)
}

// Call records one statement sent to the fake
type Call struct {
	SQL  string
	Args []any
}

// Querier is a TxRunner fake; hooks decide results, calls are recorded
type Querier struct {
	mu sync.Mutex

	Execs   []Call
	Queries []Call
	Txs     int

	OnExec  func(sql string, args []any) (store.CommandTag, error)
	OnQuery func(sql string, args []any) (*Rows, error)
}

var _ store.TxRunner = (*Querier)(nil)

func (q *Querier) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	q.mu.Lock()
	q.Execs = append(q.Execs, Call{SQL: sql, Args: args})
	hook := q.OnExec
	q.mu.Unlock()
	if hook != nil {
		return hook(sql, args)
	}
	return Tag(1), nil
}

func (q *Querier) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	rs, err := q.query(sql, args)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (q *Querier) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	rs, err := q.query(sql, args)
	return row{rows: rs, err: err}
}

func (q *Querier) query(sql string, args []any) (*Rows, error) {
	q.mu.Lock()
	q.Queries = append(q.Queries, Call{SQL: sql, Args: args})
	hook := q.OnQuery
	q.mu.Unlock()
	if hook == nil {
		return NewRows(nil), nil
	}
	rs, err := hook(sql, args)
	if rs == nil && err == nil {
		rs = NewRows(nil)
	}
	return rs, err
}

// Tx runs fn against the same fake, there is no rollback
func (q *Querier) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	q.mu.Lock()
	q.Txs++
	q.mu.Unlock()
	return fn(q)
}

// ExecCount returns how many Exec calls were made
func (q *Querier) ExecCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.Execs)
}

// LastExec returns the most recent Exec call
func (q *Querier) LastExec() (Call, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.Execs) == 0 {
		return Call{}, false
	}
	return q.Execs[len(q.Execs)-1], true
}
