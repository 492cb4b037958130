package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, orgID, id snowflake.ID) (*Record, error)
	List(ctx context.Context, orgID snowflake.ID, filter ListFilter) ([]Record, error)
	Update(ctx context.Context, record *Record) error

	// ApplyPayment inserts the payment unless its key was already applied
	// and returns whether it was applied plus the new paid total.
	ApplyPayment(ctx context.Context, payment *Payment) (applied bool, total decimal.Decimal, err error)
	ListPayments(ctx context.Context, orgID, recordID snowflake.ID) ([]Payment, error)
}
