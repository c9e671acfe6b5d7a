package investment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/costbasis"
)

const (
	quantityPlaces = 4
	valuePlaces    = 2
)

// InvestmentService handles investment-related operations
type InvestmentService struct {
	AssetRepo       domain.AssetRepository
	TransactionRepo domain.TransactionRepository
	DividendRepo    domain.DividendRepository
	MarketData      domain.MarketData
	Clock           domain.Clock

	log zerolog.Logger
}

// NewInvestmentService creates a new InvestmentService instance
func NewInvestmentService(
	assetRepo domain.AssetRepository,
	transactionRepo domain.TransactionRepository,
	dividendRepo domain.DividendRepository,
	marketData domain.MarketData,
	log zerolog.Logger,
) *InvestmentService {
	return &InvestmentService{
		AssetRepo:       assetRepo,
		TransactionRepo: transactionRepo,
		DividendRepo:    dividendRepo,
		MarketData:      marketData,
		Clock:           domain.SystemClock,
		log:             log.With().Str("service", "investment").Logger(),
	}
}

// CreateAsset validates and stores a new asset
func (s *InvestmentService) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	asset.Symbol = strings.ToUpper(strings.TrimSpace(asset.Symbol))
	asset.Currency = strings.ToUpper(asset.Currency)
	if asset.Currency == "" {
		asset.Currency = domain.DefaultCurrency
	}

	if err := asset.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	now := s.Clock()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	return s.AssetRepo.Create(ctx, asset)
}

// ListAssets returns assets ordered by name, all of them when assetType is empty
func (s *InvestmentService) ListAssets(ctx context.Context, assetType domain.AssetType) ([]domain.Asset, error) {
	return s.AssetRepo.List(ctx, assetType)
}

// DeleteAsset removes an asset with its whole ledger
func (s *InvestmentService) DeleteAsset(ctx context.Context, assetID uuid.UUID) error {
	if err := s.AssetRepo.Delete(ctx, assetID); err != nil {
		return err
	}
	s.log.Info().Str("asset_id", assetID.String()).Msg("Asset deleted")
	return nil
}

// UpdateMarketValue sets the value of an asset by hand, e.g. a property appraisal
// Logic: Overwrite the cached value (does NOT create a transaction entry)
func (s *InvestmentService) UpdateMarketValue(ctx context.Context, assetID uuid.UUID, amount decimal.Decimal) (*domain.Asset, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: market value cannot be negative", domain.ErrInvalidInput)
	}

	asset, err := s.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	asset.Value = amount.Round(valuePlaces)
	asset.UpdatedAt = s.Clock()

	if err := s.AssetRepo.Update(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// CalculateProfit runs the cost-basis engine for one asset
// Logic: Gains are derived from the transaction ledger and the asset's cached value,
// never from a live quote
func (s *InvestmentService) CalculateProfit(ctx context.Context, assetID uuid.UUID) (*costbasis.ProfitResult, error) {
	asset, err := s.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.TransactionRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	dividends, err := s.DividendRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}

	result := costbasis.Compute(*asset, transactions, dividends)
	return &result, nil
}

// CalculateProfits runs the cost-basis engine for many assets at once.
// Logic:
//  1. Read all assets, all transactions and all dividends (three reads in total)
//  2. Group the ledger rows by asset in memory
//  3. Compute each requested asset; ids with no asset are left out of the result
//
// An empty ids slice means every investment asset.
func (s *InvestmentService) CalculateProfits(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]costbasis.ProfitResult, error) {
	assets, err := s.AssetRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	transactions, err := s.TransactionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	dividends, err := s.DividendRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}

	txByAsset := make(map[uuid.UUID][]domain.Transaction)
	for _, tx := range transactions {
		txByAsset[tx.AssetID] = append(txByAsset[tx.AssetID], tx)
	}
	divByAsset := make(map[uuid.UUID][]domain.Dividend)
	for _, div := range dividends {
		divByAsset[div.AssetID] = append(divByAsset[div.AssetID], div)
	}

	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	results := make(map[uuid.UUID]costbasis.ProfitResult)
	for _, asset := range assets {
		if len(ids) == 0 && asset.Type != domain.AssetTypeInvestment {
			continue
		}
		if len(ids) > 0 && !wanted[asset.ID] {
			continue
		}
		results[asset.ID] = costbasis.Compute(asset, txByAsset[asset.ID], divByAsset[asset.ID])
	}

	return results, nil
}

// ListTransactions returns the ledger of one asset, newest first
func (s *InvestmentService) ListTransactions(ctx context.Context, assetID uuid.UUID) ([]domain.Transaction, error) {
	return s.TransactionRepo.ListByAsset(ctx, assetID)
}

// CreateTransaction records a buy or sell and recomputes the asset's projection
func (s *InvestmentService) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Asset, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.TotalValue = tx.Quantity.Mul(tx.PricePerShare).Round(valuePlaces)
	tx.CreatedAt = s.Clock()

	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	// Verify asset exists before writing to the ledger
	if _, err := s.AssetRepo.GetByID(ctx, tx.AssetID); err != nil {
		return nil, err
	}

	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	return s.RecomputeProjection(ctx, tx.AssetID)
}

// DeleteTransaction removes a transaction and recomputes the owning asset's projection
func (s *InvestmentService) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.Asset, error) {
	tx, err := s.TransactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.TransactionRepo.Delete(ctx, transactionID); err != nil {
		return nil, err
	}

	return s.RecomputeProjection(ctx, tx.AssetID)
}

// RecomputeProjection rebuilds the cached quantity and value of an asset from its ledger.
// Logic:
//  1. Quantity = sum of buys - sum of sells, rounded to 4 places
//  2. When the asset has a symbol and a quote is available, Value = Quantity * price
//     rounded to cents, and currency and price timestamp follow the quote
//  3. Otherwise only the quantity is rewritten
func (s *InvestmentService) RecomputeProjection(ctx context.Context, assetID uuid.UUID) (*domain.Asset, error) {
	asset, err := s.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.TransactionRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	quantity := decimal.Zero
	for i := range transactions {
		quantity = quantity.Add(transactions[i].SignedQuantity())
	}
	quantity = quantity.Round(quantityPlaces)

	asset.Quantity = decimal.NewNullDecimal(quantity)
	asset.UpdatedAt = s.Clock()

	if asset.HasSymbol() && s.MarketData != nil {
		quote, err := s.MarketData.Quote(ctx, asset.Symbol)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("symbol", asset.Symbol).Msg("Quote unavailable, keeping previous value")
		case quote != nil:
			applyQuote(asset, quote)
		}
	}

	if err := s.AssetRepo.Update(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// RefreshPrice re-values one symbol-bearing asset from a fresh quote
func (s *InvestmentService) RefreshPrice(ctx context.Context, asset *domain.Asset) error {
	if !asset.HasSymbol() {
		return fmt.Errorf("%w: asset %s has no symbol", domain.ErrInvalidInput, asset.ID)
	}
	if s.MarketData == nil {
		return errors.New("no market data provider configured")
	}

	quote, err := s.MarketData.Quote(ctx, asset.Symbol)
	if err != nil {
		return err
	}

	applyQuote(asset, quote)
	asset.UpdatedAt = s.Clock()
	return s.AssetRepo.Update(ctx, asset)
}

func applyQuote(asset *domain.Asset, quote *domain.Quote) {
	asset.Value = asset.UnitQuantity().Mul(quote.Price).Round(valuePlaces)
	if quote.Currency != "" {
		asset.Currency = strings.ToUpper(quote.Currency)
	}
	updated := quote.LastUpdated
	asset.LastPriceUpdate = &updated
}
