// Package dividend attributes dividend payouts to the shares a user held on each
// ex-dividend date, and aggregates them into totals, year-to-date and yield.
package dividend

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Payout is a dividend annotated with what the user actually received
type Payout struct {
	domain.Dividend
	SharesHeld  decimal.Decimal
	TotalPayout decimal.Decimal
}

// Metrics summarises the dividends of one asset
type Metrics struct {
	TotalDividends decimal.Decimal
	YTDDividends   decimal.Decimal
	DividendYield  decimal.Decimal // Percent, trailing twelve months
	Count          int             // Raw number of dividend records, eligible or not
}

// SharesHeldOn returns the net units held strictly before cutoff.
// A transaction dated exactly on the cutoff does not count.
func SharesHeldOn(transactions []domain.Transaction, cutoff time.Time) decimal.Decimal {
	held := decimal.Zero
	for i := range transactions {
		if transactions[i].Date.Before(cutoff) {
			held = held.Add(transactions[i].SignedQuantity())
		}
	}
	return held
}

// Payouts computes the payout of every dividend the user was eligible for,
// newest ex-date first. Dividends with no shares held are left out.
func Payouts(dividends []domain.Dividend, transactions []domain.Transaction) []Payout {
	payouts := make([]Payout, 0, len(dividends))
	for _, div := range dividends {
		shares := SharesHeldOn(transactions, div.ExDate)
		if !shares.IsPositive() {
			continue
		}
		payouts = append(payouts, Payout{
			Dividend:    div,
			SharesHeld:  shares,
			TotalPayout: div.Amount.Mul(shares),
		})
	}

	sort.SliceStable(payouts, func(i, j int) bool {
		return payouts[i].ExDate.After(payouts[j].ExDate)
	})

	return payouts
}

// Income returns the sum of all eligible payouts
func Income(dividends []domain.Dividend, transactions []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, div := range dividends {
		shares := SharesHeldOn(transactions, div.ExDate)
		if shares.IsPositive() {
			total = total.Add(div.Amount.Mul(shares))
		}
	}
	return total
}

// ComputeMetrics aggregates dividend income for an asset.
// Logic:
//   - Total: sum of eligible payouts
//   - YTD: eligible payouts whose ex-date falls in now's calendar year
//   - Yield: per-share amounts with an ex-date in the last twelve months, divided by
//     the implied price (asset value / quantity), as a percentage. Zero when the asset
//     has no quantity or either side is not positive.
func ComputeMetrics(asset domain.Asset, dividends []domain.Dividend, transactions []domain.Transaction, now time.Time) Metrics {
	m := Metrics{Count: len(dividends)}

	currentYear := now.Year()
	for _, div := range dividends {
		shares := SharesHeldOn(transactions, div.ExDate)
		if !shares.IsPositive() {
			continue
		}

		payout := div.Amount.Mul(shares)
		m.TotalDividends = m.TotalDividends.Add(payout)
		if div.ExDate.In(now.Location()).Year() == currentYear {
			m.YTDDividends = m.YTDDividends.Add(payout)
		}
	}

	if asset.Quantity.Valid {
		price := asset.ImpliedPrice()
		trailing := trailingPerShare(dividends, now.AddDate(-1, 0, 0))
		if price.IsPositive() && trailing.IsPositive() {
			m.DividendYield = trailing.Div(price).Mul(hundred)
		}
	}

	return m
}

// trailingPerShare sums per-share amounts (not payouts) with an ex-date on or after since
func trailingPerShare(dividends []domain.Dividend, since time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, div := range dividends {
		if !div.ExDate.Before(since) {
			sum = sum.Add(div.Amount)
		}
	}
	return sum
}
