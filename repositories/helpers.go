package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx so repositories can
// take part in a caller-owned transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// AcquireTournamentLock serializes bracket mutations per tournament for
// the lifetime of the surrounding transaction. Two racing result
// submissions can therefore never both observe an unresolved downstream
// slot.
func AcquireTournamentLock(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to acquire tournament lock %d: %w", tournamentID, err)
	}
	return nil
}
