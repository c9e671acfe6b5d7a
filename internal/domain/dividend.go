package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DividendType represents how a dividend is paid out
type DividendType string

const (
	DividendTypeCash  DividendType = "cash"
	DividendTypeStock DividendType = "stock"
)

// Dividend represents a declared per-unit distribution for an asset.
// Dividends are replaced wholesale per asset, never updated in place.
type Dividend struct {
	ID          uuid.UUID
	AssetID     uuid.UUID
	ExDate      time.Time       // Eligibility cutoff
	PaymentDate *time.Time      // NULL until paid
	Amount      decimal.Decimal // Per unit
	Currency    string
	Type        DividendType
	Notes       string
}

// Validate ensures the dividend adheres to domain rules
func (d *Dividend) Validate() error {
	if d.ExDate.IsZero() {
		return errors.New("dividend ex-date is required")
	}

	if d.Amount.IsNegative() {
		return errors.New("dividend amount cannot be negative")
	}

	if d.Type != DividendTypeCash && d.Type != DividendTypeStock {
		return errors.New("dividend type must be cash or stock")
	}

	return ValidateCurrency(d.Currency)
}
