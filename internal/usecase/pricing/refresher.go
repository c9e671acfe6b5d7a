// Package pricing refreshes cached asset values from the market data provider.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/metrics"
	"golang.org/x/time/rate"
)

// PriceUpdater re-values a single asset from a fresh quote
type PriceUpdater interface {
	RefreshPrice(ctx context.Context, asset *domain.Asset) error
}

// CacheFlusher drops cached market data responses
type CacheFlusher interface {
	ClearCache()
}

// Refresher walks the quoted investment assets one at a time, spacing
// upstream requests by a fixed interval
type Refresher struct {
	AssetRepo domain.AssetRepository
	Updater   PriceUpdater
	Cache     CacheFlusher // Optional, flushed before each full refresh

	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewRefresher creates a Refresher that issues at most one quote request per interval
func NewRefresher(assetRepo domain.AssetRepository, updater PriceUpdater, interval time.Duration, log zerolog.Logger) *Refresher {
	return &Refresher{
		AssetRepo: assetRepo,
		Updater:   updater,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		log:       log.With().Str("service", "pricing").Logger(),
	}
}

// RefreshAll updates every investment asset that has both a symbol and a quantity.
// Cached quotes are dropped first so every asset is valued at a fresh price.
// Failed symbols are listed in the result; the run only aborts when the asset
// list cannot be read or ctx is cancelled.
func (r *Refresher) RefreshAll(ctx context.Context) (*domain.BatchResult, error) {
	assets, err := r.AssetRepo.List(ctx, domain.AssetTypeInvestment)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment assets: %w", err)
	}

	if r.Cache != nil {
		r.Cache.ClearCache()
	}

	result := &domain.BatchResult{}
	for i := range assets {
		asset := &assets[i]
		if !asset.HasSymbol() || !asset.Quantity.Valid {
			continue
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("price refresh interrupted: %w", err)
		}

		if err := r.Updater.RefreshPrice(ctx, asset); err != nil {
			metrics.PriceRefreshes.WithLabelValues("failed").Inc()
			r.log.Warn().Err(err).Str("symbol", asset.Symbol).Msg("Failed to refresh price")
			result.AddError("%s", asset.Symbol)
			continue
		}

		metrics.PriceRefreshes.WithLabelValues("updated").Inc()
		result.Succeeded++
	}

	r.log.Info().
		Int("updated", result.Succeeded).
		Strs("failed", result.Errors).
		Msg("Price refresh finished")

	return result, nil
}
