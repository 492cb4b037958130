package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// OperationRequest carries one balance-affecting drawer event.
type OperationRequest struct {
	OrgID     snowflake.ID
	DrawerID  string
	ActorID   string
	Operation Operation
	Amount    decimal.Decimal
	Reference string
	Notes     string
}

// Service is the drawer ledger writer and reader.
type Service interface {
	RecordOperation(ctx context.Context, req OperationRequest) (*Transaction, error)
	Balance(ctx context.Context, orgID snowflake.ID, drawerID string) (decimal.Decimal, error)
	History(ctx context.Context, orgID snowflake.ID, drawerID string, filter HistoryFilter) ([]Transaction, error)
	Close(ctx context.Context, orgID snowflake.ID, drawerID, actorID string, amount decimal.Decimal, notes string) (*Transaction, error)
}
