package dividend

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
)

// DividendService loads an asset's records and runs the attribution engine over them
type DividendService struct {
	AssetRepo       domain.AssetRepository
	TransactionRepo domain.TransactionRepository
	DividendRepo    domain.DividendRepository
	MarketData      domain.MarketData
	Clock           domain.Clock

	log zerolog.Logger
}

// NewDividendService creates a new DividendService instance
func NewDividendService(
	assetRepo domain.AssetRepository,
	transactionRepo domain.TransactionRepository,
	dividendRepo domain.DividendRepository,
	marketData domain.MarketData,
	log zerolog.Logger,
) *DividendService {
	return &DividendService{
		AssetRepo:       assetRepo,
		TransactionRepo: transactionRepo,
		DividendRepo:    dividendRepo,
		MarketData:      marketData,
		Clock:           domain.SystemClock,
		log:             log.With().Str("service", "dividend").Logger(),
	}
}

// Metrics computes the dividend metrics of one asset
func (s *DividendService) Metrics(ctx context.Context, assetID uuid.UUID) (*Metrics, error) {
	asset, err := s.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	dividends, err := s.DividendRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}

	transactions, err := s.TransactionRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	m := ComputeMetrics(*asset, dividends, transactions, s.Clock())
	return &m, nil
}

// Payouts lists the dividends of one asset the user was eligible for, newest first
func (s *DividendService) Payouts(ctx context.Context, assetID uuid.UUID) ([]Payout, error) {
	dividends, err := s.DividendRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}

	transactions, err := s.TransactionRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return Payouts(dividends, transactions), nil
}

// FetchAndStore pulls the provider's dividend history for an asset and replaces
// the stored dividends wholesale. An empty history leaves the stored rows untouched.
// Returns the number of records stored.
func (s *DividendService) FetchAndStore(ctx context.Context, assetID uuid.UUID) (int, error) {
	asset, err := s.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return 0, err
	}
	if !asset.HasSymbol() {
		return 0, fmt.Errorf("%w: asset %s has no symbol", domain.ErrInvalidInput, assetID)
	}

	history, err := s.MarketData.DividendHistory(ctx, asset.Symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch dividend history for %s: %w", asset.Symbol, err)
	}

	if len(history) == 0 {
		s.log.Info().Str("symbol", asset.Symbol).Msg("No dividends found for symbol")
		return 0, nil
	}

	dividends := make([]domain.Dividend, 0, len(history))
	for _, div := range history {
		div.ID = uuid.New()
		div.AssetID = assetID
		if div.Type == "" {
			div.Type = domain.DividendTypeCash
		}
		if div.Currency == "" {
			div.Currency = domain.DefaultCurrency
		}
		div.Currency = strings.ToUpper(div.Currency)
		if err := div.Validate(); err != nil {
			return 0, fmt.Errorf("%w: dividend on %s: %v", domain.ErrInvalidInput, div.ExDate.Format("2006-01-02"), err)
		}
		dividends = append(dividends, div)
	}

	if err := s.DividendRepo.ReplaceForAsset(ctx, assetID, dividends); err != nil {
		return 0, err
	}

	s.log.Info().
		Str("symbol", asset.Symbol).
		Int("count", len(dividends)).
		Msg("Dividend history stored")

	return len(dividends), nil
}

// PortfolioYTD sums year-to-date dividends over every investment asset with a symbol.
// Each asset's metrics are computed independently; an asset that fails is logged and counted as zero.
func (s *DividendService) PortfolioYTD(ctx context.Context) (decimal.Decimal, error) {
	assets, err := s.AssetRepo.List(ctx, domain.AssetTypeInvestment)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list investment assets: %w", err)
	}

	total := decimal.Zero
	for _, asset := range assets {
		if !asset.HasSymbol() {
			continue
		}

		m, err := s.Metrics(ctx, asset.ID)
		if err != nil {
			s.log.Error().Err(err).Str("asset_id", asset.ID.String()).Msg("Failed to calculate dividend metrics")
			continue
		}
		total = total.Add(m.YTDDividends)
	}

	return total, nil
}

// SyncAll refreshes the stored dividend history of every investment asset with a symbol.
// A failing asset is recorded in the result and does not stop the others.
func (s *DividendService) SyncAll(ctx context.Context) (*domain.BatchResult, error) {
	assets, err := s.AssetRepo.List(ctx, domain.AssetTypeInvestment)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment assets: %w", err)
	}

	result := &domain.BatchResult{}
	for _, asset := range assets {
		if !asset.HasSymbol() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if _, err := s.FetchAndStore(ctx, asset.ID); err != nil {
			s.log.Error().Err(err).Str("symbol", asset.Symbol).Msg("Failed to sync dividends")
			result.AddError("%s: %v", asset.Symbol, err)
			continue
		}
		result.Succeeded++
	}

	return result, nil
}
