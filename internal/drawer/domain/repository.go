package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository persists the append-only drawer ledger.
type Repository interface {
	// Latest returns the most recent transaction for a drawer, or nil when
	// the drawer has no history.
	Latest(ctx context.Context, orgID snowflake.ID, drawerID string) (*Transaction, error)

	// Append inserts txn only if the drawer's latest transaction still is
	// prevID (0 for an empty drawer). A lost race returns ErrStaleBalance.
	Append(ctx context.Context, txn *Transaction, prevID snowflake.ID) error

	// History returns transactions for a drawer ordered by created_at
	// ascending, bounded by the filter.
	History(ctx context.Context, orgID snowflake.ID, drawerID string, filter HistoryFilter) ([]Transaction, error)
}
