package dbx

import (
	"context"
	"fmt"
	"slices"
)

// LockKeys takes a transaction-scoped PostgreSQL advisory lock for every key.
// Keys are de-duplicated and taken in sorted order so two transactions that
// need overlapping key sets cannot deadlock. The locks are released when the
// surrounding transaction commits or rolls back, so tx must be a *sql.Tx.
func LockKeys(ctx context.Context, tx DBTX, keys ...string) error {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	for _, k := range sorted {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, k); err != nil {
			return fmt.Errorf("advisory lock %q: %w", k, err)
		}
	}
	return nil
}
