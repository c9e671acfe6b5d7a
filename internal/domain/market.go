package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest known price for a symbol
type Quote struct {
	Symbol      string
	Price       decimal.Decimal // Per unit
	Currency    string
	LastUpdated time.Time
}

// MarketData is the price-quote provider.
// Calls are rate limited upstream, so callers must never assume a fresh quote per computation.
type MarketData interface {
	// Quote returns the current price for a symbol
	Quote(ctx context.Context, symbol string) (*Quote, error)

	// DividendHistory returns every dividend the provider knows for a symbol.
	// Returned dividends carry no ID or AssetID.
	DividendHistory(ctx context.Context, symbol string) ([]Dividend, error)
}
