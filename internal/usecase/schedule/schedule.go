// Package schedule holds the pure decision logic of recurring payment rules:
// when a rule is due, what it pays and where its next execution lands.
package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/amortization"
	"github.com/simaogato/networth-backend/internal/usecase/formula"
)

// NextExecutionDate advances current by one frequency step.
// Months and years follow time.AddDate normalization, so Jan 31 + 1 month is Mar 2 or 3.
func NextExecutionDate(current time.Time, frequency domain.Frequency) (time.Time, error) {
	switch frequency {
	case domain.FrequencyDaily:
		return current.AddDate(0, 0, 1), nil
	case domain.FrequencyWeekly:
		return current.AddDate(0, 0, 7), nil
	case domain.FrequencyMonthly:
		return current.AddDate(0, 1, 0), nil
	case domain.FrequencyYearly:
		return current.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, frequency)
	}
}

// IsDue reports whether an enabled rule's next execution date is at or before now
func IsDue(rule domain.LiabilityPaymentRule, now time.Time) bool {
	return rule.Enabled && !rule.NextExecutionDate.After(now)
}

// Plan works out what firing rule against liability at now produces.
// Logic:
//  1. Skip (nil, true, nil) when the liability has nothing left to pay
//  2. Evaluate the formula with the current balance and APR
//  3. Pay min(formula, balance), split into principal and interest, round to cents
//  4. Advance the rule one step from its previous next execution date, stamp now as last execution
//
// Nothing is persisted here.
func Plan(rule domain.LiabilityPaymentRule, liability domain.Liability, now time.Time) (*domain.RuleExecution, bool, error) {
	balance := liability.Balance
	if !balance.IsPositive() {
		return nil, true, nil
	}

	rate := liability.APR()
	evaluated, err := formula.Evaluate(rule.FormulaExpression, formula.Variables{
		Balance:      balance,
		InterestRate: rate,
	})
	if err != nil {
		return nil, false, err
	}

	next, err := NextExecutionDate(rule.NextExecutionDate, rule.Frequency)
	if err != nil {
		return nil, false, err
	}

	payment := decimal.Min(evaluated, balance)
	portions := amortization.RecordPortions(balance, rate, payment)

	executed := now
	updated := rule
	updated.NextExecutionDate = next
	updated.LastExecutionDate = &executed

	return &domain.RuleExecution{
		Rule:         updated,
		ScheduledFor: rule.NextExecutionDate,
		Payment: domain.LiabilityPayment{
			LiabilityID:      liability.ID,
			Date:             now,
			Amount:           payment.Round(2),
			PrincipalPortion: decimal.NewNullDecimal(portions.Principal),
			InterestPortion:  decimal.NewNullDecimal(portions.Interest),
			Type:             domain.PaymentTypeAutomatic,
			Notes:            "Automatic payment from rule: " + rule.FormulaExpression,
		},
		NewBalance: amortization.NewBalance(balance, payment),
	}, false, nil
}
