package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency represents how often a payment rule fires
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ParseFrequency converts a stored frequency string, failing with ErrInvalidFrequency
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
}

// LiabilityPaymentRule is a recurring payment whose amount is computed from a formula
// over the liability's balance and interest rate.
type LiabilityPaymentRule struct {
	ID                uuid.UUID
	LiabilityID       uuid.UUID
	Frequency         Frequency
	FormulaExpression string
	Enabled           bool
	NextExecutionDate time.Time
	LastExecutionDate *time.Time
	CreatedAt         time.Time
}

// Validate ensures the rule adheres to domain rules.
// The formula itself is checked by the formula evaluator at creation time.
func (r *LiabilityPaymentRule) Validate() error {
	if r.LiabilityID == uuid.Nil {
		return errors.New("payment rule must belong to a liability")
	}

	if _, err := ParseFrequency(string(r.Frequency)); err != nil {
		return err
	}

	if strings.TrimSpace(r.FormulaExpression) == "" {
		return errors.New("formula expression cannot be empty")
	}

	if r.NextExecutionDate.IsZero() {
		return errors.New("next execution date is required")
	}

	return nil
}

// RuleExecution is the outcome of firing a rule once.
// Rule already carries the advanced NextExecutionDate and stamped LastExecutionDate;
// ScheduledFor is the NextExecutionDate the rule had when it fired.
type RuleExecution struct {
	Rule         LiabilityPaymentRule
	ScheduledFor time.Time
	Payment      LiabilityPayment
	NewBalance   decimal.Decimal
}
