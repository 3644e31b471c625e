// Package sqlstore implements store.Store over database/sql. The sqlite and
// postgres drivers open the connection, supply a Dialect and a migrator, and
// share every repository in here.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
)

// Dialect captures the few places sqlite and postgres disagree.
type Dialect struct {
	Name string

	// Numbered rewrites ? placeholders into $1, $2, ...
	Numbered bool

	// IsUniqueViolation recognises the driver's unique constraint error.
	IsUniqueViolation func(error) bool
}

func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type querier struct {
	db DBTX
	d  Dialect
}

func (q querier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.d.rebind(query), args...)
}

func (q querier) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.d.rebind(query), args...)
}

func (q querier) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.d.rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id.
func (q querier) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := q.queryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, q.mapWriteErr(err)
	}
	return id, nil
}

// affected runs a write and reports how many rows it touched.
func (q querier) affected(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.exec(ctx, query, args...)
	if err != nil {
		return 0, q.mapWriteErr(err)
	}
	return res.RowsAffected()
}

func (q querier) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := q.queryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (q querier) mapWriteErr(err error) error {
	if err != nil && q.d.IsUniqueViolation != nil && q.d.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// Migrator applies the driver's embedded schema.
type Migrator func(db *sql.DB) error

type Store struct {
	db      *sql.DB
	d       Dialect
	migrate Migrator
}

// New wraps an open database.
func New(db *sql.DB, d Dialect, migrate Migrator) *Store {
	return &Store{db: db, d: d, migrate: migrate}
}

// DB exposes the pool, mostly for tests that need to poke at rows directly.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.d }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return errors.New("sqlstore: no migrator configured")
	}
	return s.migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, q: querier{db: tx, d: s.d}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) q() querier { return querier{db: s.db, d: s.d} }

func (s *Store) Users() store.Users                 { return &usersRepo{q: s.q()} }
func (s *Store) OTPCodes() store.OTPCodes           { return &otpCodesRepo{q: s.q()} }
func (s *Store) Profiles() store.Profiles           { return &profilesRepo{q: s.q()} }
func (s *Store) Education() store.Education         { return &educationRepo{q: s.q()} }
func (s *Store) Leaves() store.Leaves               { return &leavesRepo{q: s.q()} }
func (s *Store) Deployments() store.Deployments     { return &deploymentsRepo{q: s.q()} }
func (s *Store) Notifications() store.Notifications { return &notificationsRepo{q: s.q()} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// Timestamps are stored as unix seconds so both dialects compare them the same way.
func unix(t time.Time) int64 { return t.UTC().Unix() }

func fromUnix(v int64) time.Time { return time.Unix(v, 0).UTC() }

func fromNullUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromUnix(v.Int64)
	return &t
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func notFoundUnlessAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
