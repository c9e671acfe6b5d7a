package amortization

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
)

// persistedPlaces is the number of decimal places payments are stored with
const persistedPlaces = 2

var monthsTimesPercent = decimal.NewFromInt(12 * 100)

// Portions is the split of one payment into principal and interest
type Portions struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
}

// PaymentPortions splits a payment given the outstanding balance and APR (percent).
// Logic:
//   - monthly rate = APR / 100 / 12
//   - interest = balance * monthly rate
//   - principal = payment - interest
//
// No clamping or rounding happens here: principal is negative when the payment
// does not cover the accrued interest.
func PaymentPortions(balance, interestRate, paymentAmount decimal.Decimal) Portions {
	interest := balance.Mul(interestRate).Div(monthsTimesPercent)
	return Portions{
		Principal: paymentAmount.Sub(interest),
		Interest:  interest,
	}
}

// RecordPortions computes the portions as they are persisted on a LiabilityPayment:
// rounded to 2 places and never negative. When the payment does not cover the
// accrued interest the whole amount is booked as interest.
func RecordPortions(balance, interestRate, paymentAmount decimal.Decimal) Portions {
	amount := paymentAmount.Round(persistedPlaces)
	p := PaymentPortions(balance, interestRate, paymentAmount)

	interest := p.Interest.Round(persistedPlaces)
	principal := p.Principal.Round(persistedPlaces)
	if principal.IsNegative() {
		return Portions{Principal: decimal.Zero, Interest: decimal.Max(decimal.Zero, amount)}
	}
	if interest.IsNegative() {
		interest = decimal.Zero
	}
	return Portions{Principal: principal, Interest: interest}
}

// NewBalance returns balance minus payment, floored at zero and rounded for storage
func NewBalance(balance, payment decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, balance.Sub(payment)).Round(persistedPlaces)
}

// Metrics summarises a liability's payment history
type Metrics struct {
	CurrentBalance     decimal.Decimal
	InterestRate       decimal.Decimal
	TotalPaid          decimal.Decimal
	TotalInterestPaid  decimal.Decimal
	TotalPrincipalPaid decimal.Decimal
	YTDPaid            decimal.Decimal
	YTDInterestPaid    decimal.Decimal
	YTDPrincipalPaid   decimal.Decimal
	PaymentCount       int
}

// LiabilityMetrics folds the payment history into lifetime and year-to-date totals.
// Portions are summed as stored (missing portions count as zero); "year to date"
// is the calendar year of now, in now's location.
func LiabilityMetrics(liability domain.Liability, payments []domain.LiabilityPayment, now time.Time) Metrics {
	m := Metrics{
		CurrentBalance: liability.Balance,
		InterestRate:   liability.APR(),
		PaymentCount:   len(payments),
	}

	currentYear := now.Year()
	for _, payment := range payments {
		interest := payment.Interest()
		principal := payment.Principal()

		m.TotalPaid = m.TotalPaid.Add(payment.Amount)
		m.TotalInterestPaid = m.TotalInterestPaid.Add(interest)
		m.TotalPrincipalPaid = m.TotalPrincipalPaid.Add(principal)

		if payment.Date.In(now.Location()).Year() == currentYear {
			m.YTDPaid = m.YTDPaid.Add(payment.Amount)
			m.YTDInterestPaid = m.YTDInterestPaid.Add(interest)
			m.YTDPrincipalPaid = m.YTDPrincipalPaid.Add(principal)
		}
	}

	return m
}
