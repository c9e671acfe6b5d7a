package costbasis

import "github.com/shopspring/decimal"

// lot is an open purchase batch still carrying shares
type lot struct {
	Shares        decimal.Decimal
	PricePerShare decimal.Decimal
}

// lotQueue holds open lots oldest first
type lotQueue []lot

func (q *lotQueue) buy(shares, price decimal.Decimal) {
	*q = append(*q, lot{Shares: shares, PricePerShare: price})
}

// sell consumes lots from the front and returns the realized gain.
// Shares beyond what the open lots hold are not matched.
func (q *lotQueue) sell(shares, price decimal.Decimal) decimal.Decimal {
	realized := decimal.Zero
	remaining := shares

	for remaining.IsPositive() && len(*q) > 0 {
		front := &(*q)[0]
		matched := decimal.Min(remaining, front.Shares)

		realized = realized.Add(matched.Mul(price.Sub(front.PricePerShare)))
		front.Shares = front.Shares.Sub(matched)
		remaining = remaining.Sub(matched)

		if !front.Shares.IsPositive() {
			*q = (*q)[1:]
		}
	}

	return realized
}

// cost is the remaining cost basis of the open lots
func (q lotQueue) cost() decimal.Decimal {
	total := decimal.Zero
	for _, l := range q {
		total = total.Add(l.Shares.Mul(l.PricePerShare))
	}
	return total
}
