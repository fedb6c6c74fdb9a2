package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"streamtags/internal/platform/store/lite"
)

// sqlExecQuerier is the common surface of *sql.DB and *sql.Tx
type sqlExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// liteAdapter wraps lite.Lite and implements RowQuerier + TxRunner
type liteAdapter struct {
	l *lite.Lite
	sqlQuerier
}

func newLiteAdapter(l *lite.Lite) *liteAdapter {
	return &liteAdapter{l: l, sqlQuerier: sqlQuerier{q: l.DB}}
}

func (a *liteAdapter) Ping(ctx context.Context) error {
	if a == nil || a.l == nil {
		return errors.New("sqlite: nil adapter")
	}
	return a.l.Ping(ctx)
}

func (a *liteAdapter) Close() error { return a.l.Close() }

func (a *liteAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.l.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlQuerier{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// sqlQuerier adapts database/sql to RowQuerier
type sqlQuerier struct{ q sqlExecQuerier }

func (s sqlQuerier) Exec(ctx context.Context, query string, args ...any) (CommandTag, error) {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return sqlTag{n: n}, nil
}

func (s sqlQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rs, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{r: rs}, nil
}

func (s sqlQuerier) QueryRow(ctx context.Context, query string, args ...any) Row {
	return s.q.QueryRowContext(ctx, query, args...)
}

// sqlTag carries the affected row count from sql.Result
type sqlTag struct{ n int64 }

func (t sqlTag) String() string      { return fmt.Sprintf("ROWS %d", t.n) }
func (t sqlTag) RowsAffected() int64 { return t.n }

type sqlRows struct{ r *sql.Rows }

func (x sqlRows) Next() bool            { return x.r.Next() }
func (x sqlRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x sqlRows) Err() error            { return x.r.Err() }
func (x sqlRows) Close()                { _ = x.r.Close() }
func (x sqlRows) Columns() []string {
	cols, _ := x.r.Columns()
	return cols
}
