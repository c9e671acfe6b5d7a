package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Liability represents money owed (loan, mortgage, credit card)
type Liability struct {
	ID              uuid.UUID
	Name            string
	Type            string
	Balance         decimal.Decimal     // Currently owed, only goes down through payments
	InterestRate    decimal.NullDecimal // APR in percent, NULL means 0
	Currency        string
	Description     string
	LastPaymentDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// APR returns the interest rate, defaulting to zero when unset
func (l *Liability) APR() decimal.Decimal {
	if !l.InterestRate.Valid {
		return decimal.Zero
	}
	return l.InterestRate.Decimal
}

// Validate ensures the liability adheres to domain rules
func (l *Liability) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("liability name cannot be empty")
	}

	if l.InterestRate.Valid && l.InterestRate.Decimal.IsNegative() {
		return errors.New("interest rate cannot be negative")
	}

	return ValidateCurrency(l.Currency)
}

// PaymentType distinguishes user-entered payments from rule-generated ones
type PaymentType string

const (
	PaymentTypeManual    PaymentType = "manual"
	PaymentTypeAutomatic PaymentType = "automatic"
)

// LiabilityPayment is an append-only record of money paid against a liability
type LiabilityPayment struct {
	ID               uuid.UUID
	LiabilityID      uuid.UUID
	Date             time.Time
	Amount           decimal.Decimal
	PrincipalPortion decimal.NullDecimal // NULL treated as 0
	InterestPortion  decimal.NullDecimal // NULL treated as 0
	Type             PaymentType
	Notes            string
	CreatedAt        time.Time
}

// Principal returns the stored principal portion or zero
func (p *LiabilityPayment) Principal() decimal.Decimal {
	if !p.PrincipalPortion.Valid {
		return decimal.Zero
	}
	return p.PrincipalPortion.Decimal
}

// Interest returns the stored interest portion or zero
func (p *LiabilityPayment) Interest() decimal.Decimal {
	if !p.InterestPortion.Valid {
		return decimal.Zero
	}
	return p.InterestPortion.Decimal
}
