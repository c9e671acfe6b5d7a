package dashboard

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
)

// NetWorthResult represents the calculated net worth
type NetWorthResult struct {
	Total       decimal.Decimal
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	ByType      map[domain.AssetType]decimal.Decimal
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	AssetRepo     domain.AssetRepository
	LiabilityRepo domain.LiabilityRepository
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(assetRepo domain.AssetRepository, liabilityRepo domain.LiabilityRepository) *DashboardService {
	return &DashboardService{
		AssetRepo:     assetRepo,
		LiabilityRepo: liabilityRepo,
	}
}

// GetNetWorth calculates the total net worth
// Logic:
//   - Assets: Sum of every asset's cached value (no live quotes)
//   - Liabilities: Sum of every liability's outstanding balance
//   - Total: Assets - Liabilities
//
// Amounts are summed as stored, regardless of currency.
func (s *DashboardService) GetNetWorth(ctx context.Context) (*NetWorthResult, error) {
	// 1. Sum asset values, also per type
	assets, err := s.AssetRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	totalAssets := decimal.Zero
	byType := make(map[domain.AssetType]decimal.Decimal)
	for _, asset := range assets {
		totalAssets = totalAssets.Add(asset.Value)
		byType[asset.Type] = byType[asset.Type].Add(asset.Value)
	}

	// 2. Sum outstanding liability balances
	liabilities, err := s.LiabilityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}

	totalLiabilities := decimal.Zero
	for _, liability := range liabilities {
		totalLiabilities = totalLiabilities.Add(liability.Balance)
	}

	// 3. Calculate total
	return &NetWorthResult{
		Total:       totalAssets.Sub(totalLiabilities),
		Assets:      totalAssets,
		Liabilities: totalLiabilities,
		ByType:      byType,
	}, nil
}
