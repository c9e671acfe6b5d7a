// Package mocks provides testify mocks of the domain repository and market data interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// AssetRepository is a mock implementation of domain.AssetRepository
type AssetRepository struct {
	mock.Mock
}

func (m *AssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *AssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *AssetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *AssetRepository) List(ctx context.Context, typeFilter domain.AssetType) ([]domain.Asset, error) {
	args := m.Called(ctx, typeFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Asset), args.Error(1)
}

func (m *AssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TransactionRepository is a mock implementation of domain.TransactionRepository
type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TransactionRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]domain.Transaction, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *TransactionRepository) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// DividendRepository is a mock implementation of domain.DividendRepository
type DividendRepository struct {
	mock.Mock
}

func (m *DividendRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]domain.Dividend, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dividend), args.Error(1)
}

func (m *DividendRepository) ListAll(ctx context.Context) ([]domain.Dividend, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dividend), args.Error(1)
}

func (m *DividendRepository) ReplaceForAsset(ctx context.Context, assetID uuid.UUID, dividends []domain.Dividend) error {
	args := m.Called(ctx, assetID, dividends)
	return args.Error(0)
}

// LiabilityRepository is a mock implementation of domain.LiabilityRepository
type LiabilityRepository struct {
	mock.Mock
}

func (m *LiabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Liability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Liability), args.Error(1)
}

func (m *LiabilityRepository) Create(ctx context.Context, liability *domain.Liability) error {
	args := m.Called(ctx, liability)
	return args.Error(0)
}

func (m *LiabilityRepository) Update(ctx context.Context, liability *domain.Liability) error {
	args := m.Called(ctx, liability)
	return args.Error(0)
}

func (m *LiabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LiabilityRepository) List(ctx context.Context) ([]domain.Liability, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Liability), args.Error(1)
}

func (m *LiabilityRepository) ListPayments(ctx context.Context, liabilityID uuid.UUID) ([]domain.LiabilityPayment, error) {
	args := m.Called(ctx, liabilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LiabilityPayment), args.Error(1)
}

func (m *LiabilityRepository) RecordPayment(ctx context.Context, payment *domain.LiabilityPayment) (decimal.Decimal, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// PaymentRuleRepository is a mock implementation of domain.PaymentRuleRepository
type PaymentRuleRepository struct {
	mock.Mock
}

func (m *PaymentRuleRepository) Create(ctx context.Context, rule *domain.LiabilityPaymentRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *PaymentRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LiabilityPaymentRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LiabilityPaymentRule), args.Error(1)
}

func (m *PaymentRuleRepository) ListByLiability(ctx context.Context, liabilityID uuid.UUID) ([]domain.LiabilityPaymentRule, error) {
	args := m.Called(ctx, liabilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LiabilityPaymentRule), args.Error(1)
}

func (m *PaymentRuleRepository) ListDue(ctx context.Context, now time.Time) ([]domain.LiabilityPaymentRule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LiabilityPaymentRule), args.Error(1)
}

func (m *PaymentRuleRepository) Update(ctx context.Context, rule *domain.LiabilityPaymentRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *PaymentRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PaymentRuleRepository) RecordExecution(ctx context.Context, exec *domain.RuleExecution) error {
	args := m.Called(ctx, exec)
	return args.Error(0)
}

// MarketData is a mock implementation of domain.MarketData
type MarketData struct {
	mock.Mock
}

func (m *MarketData) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MarketData) DividendHistory(ctx context.Context, symbol string) ([]domain.Dividend, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dividend), args.Error(1)
}
