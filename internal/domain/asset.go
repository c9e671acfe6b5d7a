package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType represents the kind of asset being tracked
type AssetType string

const (
	AssetTypeInvestment AssetType = "investment"
	AssetTypeBank       AssetType = "bank"
	AssetTypeProperty   AssetType = "property"
	AssetTypeCrypto     AssetType = "crypto"
	AssetTypeOther      AssetType = "other"
)

// DefaultCurrency is used when a record does not carry its own currency
const DefaultCurrency = "USD"

// Asset represents something the user owns.
// Quantity and Value are denormalized caches: Quantity is recomputed from the
// transaction ledger, Value from the last price quote (or entered by hand).
type Asset struct {
	ID              uuid.UUID
	Name            string
	Type            AssetType
	Category        string
	Symbol          string              // Ticker, empty when the asset is not quoted
	Quantity        decimal.NullDecimal // Total units held, NULL for non-unit assets
	Value           decimal.Decimal     // Total current value in Currency, NOT per unit
	Currency        string
	Description     string
	LastPriceUpdate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasSymbol reports whether the asset is tied to a market ticker
func (a *Asset) HasSymbol() bool {
	return strings.TrimSpace(a.Symbol) != ""
}

// UnitQuantity returns the cached quantity, or zero when it is not set
func (a *Asset) UnitQuantity() decimal.Decimal {
	if !a.Quantity.Valid {
		return decimal.Zero
	}
	return a.Quantity.Decimal
}

// ImpliedPrice returns Value / Quantity when the quantity is positive, else zero
func (a *Asset) ImpliedPrice() decimal.Decimal {
	qty := a.UnitQuantity()
	if !qty.IsPositive() {
		return decimal.Zero
	}
	return a.Value.Div(qty)
}

// Validate ensures the asset adheres to domain rules
func (a *Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("asset name cannot be empty")
	}

	switch a.Type {
	case AssetTypeInvestment, AssetTypeBank, AssetTypeProperty, AssetTypeCrypto, AssetTypeOther:
	default:
		return fmt.Errorf("unknown asset type %q", a.Type)
	}

	if a.Quantity.Valid && a.Quantity.Decimal.IsNegative() {
		return errors.New("asset quantity cannot be negative")
	}

	return ValidateCurrency(a.Currency)
}

// ValidateCurrency checks that code is a known ISO 4217 currency
func ValidateCurrency(code string) error {
	if code == "" {
		return errors.New("currency cannot be empty")
	}
	if money.GetCurrency(strings.ToUpper(code)) == nil {
		return fmt.Errorf("unknown currency %q", code)
	}
	return nil
}
