package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
)

type txStore struct {
	tx *sql.Tx
	q  querier
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the pool stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction starts.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.q} }
func (t *txStore) OTPCodes() store.OTPCodes           { return &otpCodesRepo{q: t.q} }
func (t *txStore) Profiles() store.Profiles           { return &profilesRepo{q: t.q} }
func (t *txStore) Education() store.Education         { return &educationRepo{q: t.q} }
func (t *txStore) Leaves() store.Leaves               { return &leavesRepo{q: t.q} }
func (t *txStore) Deployments() store.Deployments     { return &deploymentsRepo{q: t.q} }
func (t *txStore) Notifications() store.Notifications { return &notificationsRepo{q: t.q} }
