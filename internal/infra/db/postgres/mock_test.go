//go:build !integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// --- Fakes for the pool provider and repository tests ---

// fakeRows serves canned rows through the pgx.Rows interface.
type fakeRows struct {
	pgx.Rows // Embed interface; unused methods panic
	data     [][]interface{}
	idx      int
	err      error
	closed   bool
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			p2, ok := row[i].(int64)
			if !ok {
				return fmt.Errorf("scan: column %d is not int64", i)
			}
			*p = p2
		case **string:
			if row[i] == nil {
				*p = nil
				continue
			}
			s, ok := row[i].(string)
			if !ok {
				return fmt.Errorf("scan: column %d is not text", i)
			}
			*p = &s
		case *time.Time:
			ts, ok := row[i].(time.Time)
			if !ok {
				return fmt.Errorf("scan: column %d is not timestamp", i)
			}
			*p = ts
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     { r.closed = true }

// fakeQuerier records the query and returns fakeRows.
type fakeQuerier struct {
	mu       sync.Mutex
	rows     *fakeRows
	queryErr error
	block    bool // wait for ctx before answering

	gotSQL  string
	gotArgs []interface{}
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	q.mu.Lock()
	q.gotSQL = sql
	q.gotArgs = args
	q.mu.Unlock()
	if q.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	if q.rows == nil {
		return &fakeRows{}, nil
	}
	return q.rows, nil
}

// fakeSource hands out a querier or an error.
type fakeSource struct {
	q   Querier
	err error
}

func (s *fakeSource) Querier(ctx context.Context) (Querier, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.q, nil
}

// fakePool satisfies pgPool for provider tests.
type fakePool struct {
	fakeQuerier
	closeCalls int
}

func (p *fakePool) Stat() *pgxpool.Stat { return nil }
func (p *fakePool) Close()              { p.closeCalls++ }

var errDial = errors.New("dial refused")
