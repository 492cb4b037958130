package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Operation identifies the effect a transaction has on the drawer balance.
type Operation string

const (
	OperationAdd            Operation = "add"
	OperationRemove         Operation = "remove"
	OperationSale           Operation = "sale"
	OperationExpense        Operation = "expense"
	OperationInitialization Operation = "initialization"
	OperationCount          Operation = "count"
	OperationClose          Operation = "close"
)

// Valid reports whether op is a known drawer operation.
func (op Operation) Valid() bool {
	switch op {
	case OperationAdd, OperationRemove, OperationSale, OperationExpense,
		OperationInitialization, OperationCount, OperationClose:
		return true
	}
	return false
}

// CountPolicy controls how a manual cash count affects the balance.
type CountPolicy string

const (
	// CountPolicyOverwrite sets the balance to the counted amount and keeps
	// the discrepancy on the transaction record.
	CountPolicyOverwrite CountPolicy = "overwrite"
	// CountPolicyRecordOnly keeps the running balance and only records the
	// counted amount alongside it.
	CountPolicyRecordOnly CountPolicy = "record_only"
)

// Transaction is an immutable drawer ledger row. Rows are never updated or
// deleted; corrections append new rows.
type Transaction struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID    `gorm:"not null;index" json:"org_id"`
	DrawerID        string          `gorm:"type:text;not null;index:idx_drawer_txns_drawer_created,priority:1" json:"drawer_id"`
	ActorID         string          `gorm:"type:text;not null" json:"actor_id"`
	Operation       Operation       `gorm:"type:text;not null" json:"operation"`
	PreviousBalance decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"previous_balance"`
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Balance         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"balance"`
	Reference       string          `gorm:"type:text" json:"reference,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_drawer_txns_drawer_created,priority:2" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "drawer_transactions" }

// SignedDelta returns the directional contribution an operation makes to the
// running balance. count is handled by the caller because it replaces the
// balance instead of shifting it.
func SignedDelta(op Operation, amount decimal.Decimal) decimal.Decimal {
	switch op {
	case OperationAdd, OperationSale, OperationInitialization:
		return amount
	case OperationRemove, OperationExpense, OperationClose:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

// NextBalance applies op to previous and returns the resulting balance.
func NextBalance(op Operation, previous, amount decimal.Decimal) decimal.Decimal {
	if op == OperationCount {
		return amount
	}
	return previous.Add(SignedDelta(op, amount))
}

// HistoryFilter bounds a history query. Zero times mean unbounded.
type HistoryFilter struct {
	From time.Time
	To   time.Time
}
