package liability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/metrics"
	"github.com/simaogato/networth-backend/internal/usecase/amortization"
)

// LiabilityService handles liability-related operations
type LiabilityService struct {
	LiabilityRepo domain.LiabilityRepository
	Clock         domain.Clock

	log zerolog.Logger
}

// NewLiabilityService creates a new LiabilityService instance
func NewLiabilityService(liabilityRepo domain.LiabilityRepository, log zerolog.Logger) *LiabilityService {
	return &LiabilityService{
		LiabilityRepo: liabilityRepo,
		Clock:         domain.SystemClock,
		log:           log.With().Str("service", "liability").Logger(),
	}
}

// CreateLiability validates and stores a new liability
func (s *LiabilityService) CreateLiability(ctx context.Context, liability *domain.Liability) error {
	if liability.ID == uuid.Nil {
		liability.ID = uuid.New()
	}
	liability.Currency = strings.ToUpper(liability.Currency)
	if liability.Currency == "" {
		liability.Currency = domain.DefaultCurrency
	}

	if err := liability.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	now := s.Clock()
	liability.CreatedAt = now
	liability.UpdatedAt = now
	return s.LiabilityRepo.Create(ctx, liability)
}

// ListLiabilities returns all liabilities ordered by name
func (s *LiabilityService) ListLiabilities(ctx context.Context) ([]domain.Liability, error) {
	return s.LiabilityRepo.List(ctx)
}

// LiabilityUpdate carries the fields to change on a liability; nil fields are left as they are
type LiabilityUpdate struct {
	Name         *string
	Description  *string
	Balance      *decimal.Decimal
	InterestRate *decimal.Decimal
}

// UpdateLiability applies an edit made outside the payment flow.
// This is the only way a balance can go up, e.g. a new draw on a credit line.
func (s *LiabilityService) UpdateLiability(ctx context.Context, liabilityID uuid.UUID, update LiabilityUpdate) (*domain.Liability, error) {
	liability, err := s.LiabilityRepo.GetByID(ctx, liabilityID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		liability.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		liability.Description = strings.TrimSpace(*update.Description)
	}
	if update.Balance != nil {
		if update.Balance.IsNegative() {
			return nil, fmt.Errorf("%w: balance cannot be negative", domain.ErrInvalidInput)
		}
		liability.Balance = update.Balance.Round(2)
	}
	if update.InterestRate != nil {
		liability.InterestRate = decimal.NewNullDecimal(*update.InterestRate)
	}

	if err := liability.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	liability.UpdatedAt = s.Clock()
	if err := s.LiabilityRepo.Update(ctx, liability); err != nil {
		return nil, err
	}
	return liability, nil
}

// DeleteLiability removes a liability with its payments and rules
func (s *LiabilityService) DeleteLiability(ctx context.Context, liabilityID uuid.UUID) error {
	if err := s.LiabilityRepo.Delete(ctx, liabilityID); err != nil {
		return err
	}
	s.log.Info().Str("liability_id", liabilityID.String()).Msg("Liability deleted")
	return nil
}

// RecordManualPayment records a user-entered payment against a liability.
// Logic:
//  1. Split the amount into principal and interest at the current balance and APR
//  2. Round both to cents, booking everything as interest when the amount does not cover it
//  3. Append a manual payment and lower the stored balance by the full amount, floored at 0
//
// Unlike rule payments the amount is not capped at the balance.
func (s *LiabilityService) RecordManualPayment(ctx context.Context, liabilityID uuid.UUID, amount decimal.Decimal, date time.Time, notes string) (*domain.LiabilityPayment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", domain.ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: payment date is required", domain.ErrInvalidInput)
	}

	liability, err := s.LiabilityRepo.GetByID(ctx, liabilityID)
	if err != nil {
		return nil, err
	}

	portions := amortization.RecordPortions(liability.Balance, liability.APR(), amount)
	payment := &domain.LiabilityPayment{
		ID:               uuid.New(),
		LiabilityID:      liabilityID,
		Date:             date,
		Amount:           amount.Round(2),
		PrincipalPortion: decimal.NewNullDecimal(portions.Principal),
		InterestPortion:  decimal.NewNullDecimal(portions.Interest),
		Type:             domain.PaymentTypeManual,
		Notes:            strings.TrimSpace(notes),
		CreatedAt:        s.Clock(),
	}

	newBalance, err := s.LiabilityRepo.RecordPayment(ctx, payment)
	if err != nil {
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(domain.PaymentTypeManual)).Inc()
	s.log.Info().
		Str("liability_id", liabilityID.String()).
		Str("amount", payment.Amount.StringFixed(2)).
		Str("new_balance", newBalance.StringFixed(2)).
		Msg("Manual payment recorded")

	return payment, nil
}

// Metrics computes lifetime and year-to-date payment totals for a liability
func (s *LiabilityService) Metrics(ctx context.Context, liabilityID uuid.UUID) (*amortization.Metrics, error) {
	liability, err := s.LiabilityRepo.GetByID(ctx, liabilityID)
	if err != nil {
		return nil, err
	}

	payments, err := s.LiabilityRepo.ListPayments(ctx, liabilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	m := amortization.LiabilityMetrics(*liability, payments, s.Clock())
	return &m, nil
}
