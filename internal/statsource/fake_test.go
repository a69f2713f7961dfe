package statsource

import (
	"context"
	"fmt"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FakeSource is a programmable Source
type FakeSource struct {
	name      string
	trace     []string
	FetchFunc func(ctx context.Context) ([]domain.PlayerLifetimeStats, error)
}

func (f *FakeSource) Name() string { return f.name }

func (f *FakeSource) Fetch(ctx context.Context) ([]domain.PlayerLifetimeStats, error) {
	f.trace = append(f.trace, "Fetch")
	if f.FetchFunc != nil {
		return f.FetchFunc(ctx)
	}
	return nil, nil
}

// FakeBlacklist is a programmable BlacklistReader
type FakeBlacklist struct {
	BlacklistedUsernamesFunc func(ctx context.Context) ([]string, error)
}

func (f *FakeBlacklist) BlacklistedUsernames(ctx context.Context) ([]string, error) {
	if f.BlacklistedUsernamesFunc != nil {
		return f.BlacklistedUsernamesFunc(ctx)
	}
	return nil, nil
}

// fakeQuerier serves canned rows
type fakeQuerier struct {
	rows    [][]any
	err     error
	lastSQL string
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	if q.err != nil {
		return nil, q.err
	}
	return &fakeRows{rows: q.rows, pos: -1}, nil
}

type fakeRows struct {
	rows   [][]any
	pos    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos], nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d columns into %d destinations", len(row), len(dest))
	}
	for i, d := range dest {
		if row[i] == nil {
			continue
		}
		switch d := d.(type) {
		case **string:
			v := row[i].(string)
			*d = &v
		case **int64:
			v := row[i].(int64)
			*d = &v
		case **float64:
			v := row[i].(float64)
			*d = &v
		case **time.Time:
			v := row[i].(time.Time)
			*d = &v
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}
