// Package costbasis computes realized and unrealized gains of an asset by matching
// sells against buy lots first-in first-out.
package costbasis

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/dividend"
)

var hundred = decimal.NewFromInt(100)

// ProfitResult is a snapshot of an asset's position and performance
type ProfitResult struct {
	TotalShares    decimal.Decimal
	AvgCostBasis   decimal.Decimal
	CurrentPrice   decimal.Decimal
	CurrentValue   decimal.Decimal
	TotalCost      decimal.Decimal // Cost basis of the lots still open
	UnrealizedGain decimal.Decimal
	RealizedGain   decimal.Decimal
	DividendIncome decimal.Decimal
	TotalGain      decimal.Decimal
	GainPercentage decimal.Decimal
}

// Compute runs the FIFO engine over an asset's transactions.
// Logic:
//  1. Sort transactions by date ascending, same-day rows by creation time
//  2. Buys open a lot, sells consume lots from the front realizing (sell - lot) * qty
//  3. CurrentPrice = asset.Value / TotalShares, never a live quote
//  4. TotalGain = unrealized + realized + dividend income
//  5. GainPercentage = TotalGain / open cost * 100, 0 when there is no open cost
//
// With no transactions every figure is zero except CurrentPrice, which is
// Value / Quantity when a positive quantity is cached and Value otherwise.
func Compute(asset domain.Asset, transactions []domain.Transaction, dividends []domain.Dividend) ProfitResult {
	if len(transactions) == 0 {
		price := asset.Value
		if asset.UnitQuantity().IsPositive() {
			price = asset.ImpliedPrice()
		}
		return ProfitResult{CurrentPrice: price}
	}

	sorted := Chronological(transactions)

	var (
		queue    lotQueue
		shares   = decimal.Zero
		realized = decimal.Zero
	)
	for _, tx := range sorted {
		switch tx.Type {
		case domain.TransactionTypeBuy:
			shares = shares.Add(tx.Quantity)
			queue.buy(tx.Quantity, tx.PricePerShare)
		case domain.TransactionTypeSell:
			shares = shares.Sub(tx.Quantity)
			realized = realized.Add(queue.sell(tx.Quantity, tx.PricePerShare))
		}
	}

	result := ProfitResult{
		TotalShares:  shares,
		TotalCost:    queue.cost(),
		RealizedGain: realized,
	}

	if asset.HasSymbol() {
		result.DividendIncome = dividend.Income(dividends, sorted)
	}

	if shares.IsPositive() {
		result.CurrentPrice = asset.Value.Div(shares)
		result.AvgCostBasis = result.TotalCost.Div(shares)
	}
	result.CurrentValue = shares.Mul(result.CurrentPrice)
	result.UnrealizedGain = result.CurrentValue.Sub(result.TotalCost)
	result.TotalGain = result.UnrealizedGain.Add(result.RealizedGain).Add(result.DividendIncome)

	if result.TotalCost.IsPositive() {
		result.GainPercentage = result.TotalGain.Div(result.TotalCost).Mul(hundred)
	}

	return result
}

// Chronological returns a copy of transactions ordered by date ascending.
// Same-day rows are ordered by CreatedAt ascending; full ties keep their given order.
func Chronological(transactions []domain.Transaction) []domain.Transaction {
	sorted := make([]domain.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}
