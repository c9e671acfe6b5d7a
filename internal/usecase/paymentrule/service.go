// Package paymentrule executes and manages recurring liability payment rules.
package paymentrule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/metrics"
	"github.com/simaogato/networth-backend/internal/usecase/formula"
	"github.com/simaogato/networth-backend/internal/usecase/schedule"
)

// PaymentRuleService handles recurring payment rule operations
type PaymentRuleService struct {
	RuleRepo      domain.PaymentRuleRepository
	LiabilityRepo domain.LiabilityRepository
	Clock         domain.Clock

	log zerolog.Logger
}

// NewPaymentRuleService creates a new PaymentRuleService instance
func NewPaymentRuleService(ruleRepo domain.PaymentRuleRepository, liabilityRepo domain.LiabilityRepository, log zerolog.Logger) *PaymentRuleService {
	return &PaymentRuleService{
		RuleRepo:      ruleRepo,
		LiabilityRepo: liabilityRepo,
		Clock:         domain.SystemClock,
		log:           log.With().Str("service", "payment_rule").Logger(),
	}
}

// ListDueRules returns the enabled rules whose next execution date has been reached
func (s *PaymentRuleService) ListDueRules(ctx context.Context) ([]domain.LiabilityPaymentRule, error) {
	now := s.Clock()

	rules, err := s.RuleRepo.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due rules: %w", err)
	}

	due := make([]domain.LiabilityPaymentRule, 0, len(rules))
	for _, rule := range rules {
		if schedule.IsDue(rule, now) {
			due = append(due, rule)
		}
	}
	return due, nil
}

// ExecuteRule fires a single rule.
// Logic:
//  1. Skip (nil, nil) a rule that is disabled or not due yet
//  2. Load the rule's liability
//  3. Plan the payment (nil result when the liability is already paid off)
//  4. Persist payment, new balance and advanced rule in one write
//
// On failure the rule is left untouched so the next run picks it up again.
// A rule another run fired in the meantime is skipped as well.
func (s *PaymentRuleService) ExecuteRule(ctx context.Context, rule domain.LiabilityPaymentRule) (*domain.RuleExecution, error) {
	if !schedule.IsDue(rule, s.Clock()) {
		metrics.RuleExecutions.WithLabelValues("skipped").Inc()
		return nil, nil
	}

	liability, err := s.LiabilityRepo.GetByID(ctx, rule.LiabilityID)
	if err != nil {
		return nil, err
	}

	exec, skipped, err := schedule.Plan(rule, *liability, s.Clock())
	if err != nil {
		return nil, err
	}
	if skipped {
		metrics.RuleExecutions.WithLabelValues("skipped").Inc()
		return nil, nil
	}

	exec.Payment.ID = uuid.New()
	exec.Payment.CreatedAt = s.Clock()
	if err := s.RuleRepo.RecordExecution(ctx, exec); err != nil {
		if errors.Is(err, domain.ErrRuleAlreadyExecuted) {
			metrics.RuleExecutions.WithLabelValues("skipped").Inc()
			s.log.Debug().Str("rule_id", rule.ID.String()).Msg("Payment rule already executed by another run")
			return nil, nil
		}
		return nil, err
	}

	metrics.RuleExecutions.WithLabelValues("executed").Inc()
	metrics.PaymentsRecorded.WithLabelValues(string(domain.PaymentTypeAutomatic)).Inc()

	s.log.Info().
		Str("rule_id", rule.ID.String()).
		Str("liability_id", rule.LiabilityID.String()).
		Str("amount", exec.Payment.Amount.StringFixed(2)).
		Str("new_balance", exec.NewBalance.StringFixed(2)).
		Time("next_execution", exec.Rule.NextExecutionDate).
		Msg("Payment rule executed")

	return exec, nil
}

// ExecuteDueRules fires every due rule in turn.
// A failing rule is recorded in the result and does not stop the others;
// only failing to list the due rules is returned as an error.
func (s *PaymentRuleService) ExecuteDueRules(ctx context.Context) (*domain.BatchResult, error) {
	rules, err := s.ListDueRules(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.BatchResult{}
	for _, rule := range rules {
		exec, err := s.ExecuteRule(ctx, rule)
		if err != nil {
			metrics.RuleExecutions.WithLabelValues("failed").Inc()
			s.log.Error().Err(err).Str("rule_id", rule.ID.String()).Msg("Failed to execute payment rule")

			if errors.Is(err, domain.ErrNotFound) {
				result.AddError("Liability %s not found", rule.LiabilityID)
			} else {
				result.AddError("Rule %s: %v", rule.ID, err)
			}
			continue
		}
		if exec != nil {
			result.Succeeded++
		}
	}

	s.log.Info().
		Int("due", len(rules)).
		Int("executed", result.Succeeded).
		Int("errors", len(result.Errors)).
		Msg("Payment rules run finished")

	return result, nil
}

// CreateRule adds an enabled rule to a liability.
// The frequency and formula are validated, and the first execution cannot lie before today.
func (s *PaymentRuleService) CreateRule(ctx context.Context, liabilityID uuid.UUID, frequency, expression string, nextExecution time.Time) (*domain.LiabilityPaymentRule, error) {
	if _, err := s.LiabilityRepo.GetByID(ctx, liabilityID); err != nil {
		return nil, err
	}

	freq, err := domain.ParseFrequency(frequency)
	if err != nil {
		return nil, err
	}

	expression = strings.TrimSpace(expression)
	if err := formula.Validate(expression); err != nil {
		return nil, err
	}

	if nextExecution.Before(startOfDay(s.Clock())) {
		return nil, fmt.Errorf("%w: next execution date cannot be in the past", domain.ErrInvalidInput)
	}

	rule := &domain.LiabilityPaymentRule{
		ID:                uuid.New(),
		LiabilityID:       liabilityID,
		Frequency:         freq,
		FormulaExpression: expression,
		Enabled:           true,
		NextExecutionDate: nextExecution.Truncate(time.Microsecond),
		CreatedAt:         s.Clock(),
	}
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := s.RuleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ListRules returns the rules of one liability, newest first
func (s *PaymentRuleService) ListRules(ctx context.Context, liabilityID uuid.UUID) ([]domain.LiabilityPaymentRule, error) {
	return s.RuleRepo.ListByLiability(ctx, liabilityID)
}

// RuleUpdate carries the fields to change on a rule; nil fields are left as they are
type RuleUpdate struct {
	Enabled           *bool
	FormulaExpression *string
	Frequency         *string
	NextExecutionDate *time.Time
}

// UpdateRule applies a partial update to a rule
func (s *PaymentRuleService) UpdateRule(ctx context.Context, ruleID uuid.UUID, update RuleUpdate) (*domain.LiabilityPaymentRule, error) {
	rule, err := s.RuleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if update.Enabled != nil {
		rule.Enabled = *update.Enabled
	}
	if update.FormulaExpression != nil {
		expression := strings.TrimSpace(*update.FormulaExpression)
		if err := formula.Validate(expression); err != nil {
			return nil, err
		}
		rule.FormulaExpression = expression
	}
	if update.Frequency != nil {
		freq, err := domain.ParseFrequency(*update.Frequency)
		if err != nil {
			return nil, err
		}
		rule.Frequency = freq
	}
	if update.NextExecutionDate != nil {
		rule.NextExecutionDate = update.NextExecutionDate.Truncate(time.Microsecond)
	}

	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := s.RuleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule removes a rule
func (s *PaymentRuleService) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	return s.RuleRepo.Delete(ctx, ruleID)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
