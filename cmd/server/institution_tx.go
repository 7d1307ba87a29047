package main

import (
	"context"
	"database/sql"
	"time"

	"bursar/internal/institution/service"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	txcontext "bursar/pkg/platform/tx"
)

const defaultInstitutionTxTimeout = 5 * time.Second

// institutionPostgresTx runs a mutation in one SQL transaction holding a
// transaction-scoped advisory lock on the institution, so concurrent balance
// movements on the same institution apply one after another.
type institutionPostgresTx struct {
	db      *sql.DB
	stores  service.Stores
	timeout time.Duration
}

func newInstitutionPostgresTx(db *sql.DB, stores service.Stores, timeout time.Duration) *institutionPostgresTx {
	return &institutionPostgresTx{db: db, stores: stores, timeout: timeout}
}

func (t *institutionPostgresTx) RunInTx(ctx context.Context, key id.InstitutionID, fn func(ctx context.Context, st service.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultInstitutionTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key.String()); err != nil {
		if ctx.Err() != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "timed out waiting for institution lock")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock institution")
	}

	if err := fn(txcontext.WithTx(ctx, tx), t.stores); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
