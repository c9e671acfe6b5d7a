package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the side of a trade
type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

// Transaction represents a buy or sell of units of an asset.
// Transactions are immutable once recorded; deleting one triggers a recompute
// of the owning asset's projection.
type Transaction struct {
	ID            uuid.UUID
	AssetID       uuid.UUID
	Type          TransactionType
	Date          time.Time
	Quantity      decimal.Decimal // Always positive
	PricePerShare decimal.Decimal // Always positive
	TotalValue    decimal.Decimal // Quantity * PricePerShare, advisory only
	Notes         string
	CreatedAt     time.Time
}

// SignedQuantity returns +Quantity for a buy and -Quantity for a sell
func (t *Transaction) SignedQuantity() decimal.Decimal {
	if t.Type == TransactionTypeSell {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.AssetID == uuid.Nil {
		return errors.New("transaction must belong to an asset")
	}

	if t.Type != TransactionTypeBuy && t.Type != TransactionTypeSell {
		return errors.New("transaction type must be buy or sell")
	}

	if t.Date.IsZero() {
		return errors.New("transaction date is required")
	}

	if t.Quantity.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction quantity must be positive")
	}

	if t.PricePerShare.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction price per share must be positive")
	}

	return nil
}
