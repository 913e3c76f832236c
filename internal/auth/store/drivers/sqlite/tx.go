package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/taskgate/internal/auth/store"
)

// repos hands out repositories bound to either the pool or a transaction.
type repos struct{ q DBTX }

func (r repos) Users() store.Users                 { return &usersRepo{q: r.q} }
func (r repos) Roles() store.Roles                 { return &rolesRepo{q: r.q} }
func (r repos) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: r.q} }
func (r repos) Todos() store.Todos                 { return &todosRepo{q: r.q} }

type txStore struct {
	repos
	tx *sql.Tx
}

var _ store.Tx = (*txStore)(nil)

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close leaves the transaction to Commit or Rollback.
func (t *txStore) Close() error                         { return nil }
func (t *txStore) Ping(context.Context) error           { return nil }
func (t *txStore) ApplyMigrations() error               { return store.ErrNestedTx }
func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, store.ErrNestedTx }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error {
	return store.ErrNestedTx
}
