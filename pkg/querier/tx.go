package querier

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Tx wraps a pgx transaction. Every statement issued through it shares one
// transactional scope; the scope commits as a whole or not at all.
type Tx struct {
	db *DB
	tx pgx.Tx
}

// Begin starts a new read-write transaction.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	return db.BeginTx(ctx, pgx.TxOptions{})
}

// BeginReadOnly starts a transaction with a read-only access hint, letting
// the engine skip write bookkeeping for list/find queries.
func (db *DB) BeginReadOnly(ctx context.Context) (*Tx, error) {
	return db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
}

// BeginTx starts a new transaction with custom options.
func (db *DB) BeginTx(ctx context.Context, opts pgx.TxOptions) (*Tx, error) {
	tx, err := db.pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{db: db, tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction. Safe to call after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Exec executes a statement within the transaction.
func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	t.db.count(kindExec)
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, &QueryError{Query: sql, Err: err}
	}
	return tag.RowsAffected(), nil
}

// Query executes a query within the transaction.
func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	t.db.count(kindQuery)
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, &QueryError{Query: sql, Err: err}
	}
	return rows, nil
}

// QueryRow executes a query that returns at most one row within the
// transaction.
func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	t.db.count(kindQuery)
	return t.tx.QueryRow(ctx, sql, args...)
}

// WithinTx runs fn inside one transaction: committed when fn returns nil,
// rolled back entirely otherwise.
func (db *DB) WithinTx(ctx context.Context, fn func(tx *Tx) error) error {
	return db.withinTx(ctx, pgx.TxOptions{}, fn)
}

// WithinReadOnlyTx runs fn inside one read-only transaction.
func (db *DB) WithinReadOnlyTx(ctx context.Context, fn func(tx *Tx) error) error {
	return db.withinTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (db *DB) withinTx(ctx context.Context, opts pgx.TxOptions, fn func(tx *Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Runner is the statement surface shared by DB and Tx. Repositories accept a
// Runner so the same query code serves both pooled and transactional calls.
type Runner interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Runner = (*DB)(nil)
	_ Runner = (*Tx)(nil)
)
