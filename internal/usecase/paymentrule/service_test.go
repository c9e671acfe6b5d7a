package paymentrule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 0, 5, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup() (*PaymentRuleService, *mocks.PaymentRuleRepository, *mocks.LiabilityRepository) {
	ruleRepo := new(mocks.PaymentRuleRepository)
	liabilityRepo := new(mocks.LiabilityRepository)
	service := NewPaymentRuleService(ruleRepo, liabilityRepo, zerolog.Nop())
	service.Clock = func() time.Time { return now }
	return service, ruleRepo, liabilityRepo
}

func loan(balance string) *domain.Liability {
	return &domain.Liability{
		ID:           uuid.New(),
		Name:         "Mortgage",
		Balance:      d(balance),
		InterestRate: decimal.NewNullDecimal(d("12")),
		Currency:     "USD",
	}
}

func ruleFor(liabilityID uuid.UUID, expr string) domain.LiabilityPaymentRule {
	return domain.LiabilityPaymentRule{
		ID:                uuid.New(),
		LiabilityID:       liabilityID,
		Frequency:         domain.FrequencyMonthly,
		FormulaExpression: expr,
		Enabled:           true,
		NextExecutionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestListDueRules_FiltersWithDecisionLogic(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _ := setup()

	due := ruleFor(uuid.New(), "100")
	disabled := ruleFor(uuid.New(), "100")
	disabled.Enabled = false
	future := ruleFor(uuid.New(), "100")
	future.NextExecutionDate = now.AddDate(0, 0, 1)

	ruleRepo.On("ListDue", ctx, now).Return([]domain.LiabilityPaymentRule{due, disabled, future}, nil)

	rules, err := service.ListDueRules(ctx)

	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, due.ID, rules[0].ID)
}

func TestExecuteRule_RecordsExecution(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, liabilityRepo := setup()

	liability := loan("10000")
	rule := ruleFor(liability.ID, "balance * 0.02")

	liabilityRepo.On("GetByID", ctx, liability.ID).Return(liability, nil)
	ruleRepo.On("RecordExecution", ctx, mock.MatchedBy(func(exec *domain.RuleExecution) bool {
		return exec.Payment.ID != uuid.Nil &&
			exec.Payment.Amount.Equal(d("200")) &&
			exec.NewBalance.Equal(d("9800")) &&
			exec.ScheduledFor.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) &&
			exec.Rule.NextExecutionDate.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	})).Return(nil)

	exec, err := service.ExecuteRule(ctx, rule)

	require.NoError(t, err)
	require.NotNil(t, exec)
	assert.Equal(t, "100.00", exec.Payment.Interest().StringFixed(2))
	assert.Equal(t, now, *exec.Rule.LastExecutionDate)
	ruleRepo.AssertExpectations(t)
}

func TestExecuteRule_PaidOffLiabilityIsSkipped(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, liabilityRepo := setup()

	liability := loan("0")
	rule := ruleFor(liability.ID, "100")
	liabilityRepo.On("GetByID", ctx, liability.ID).Return(liability, nil)

	exec, err := service.ExecuteRule(ctx, rule)

	assert.NoError(t, err)
	assert.Nil(t, exec)
	ruleRepo.AssertNotCalled(t, "RecordExecution", mock.Anything, mock.Anything)
}

func TestExecuteRule_NotDueIsSkipped(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		enabled bool
		next    time.Time
	}{
		{"Disabled", false, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"Future date", true, now.AddDate(0, 3, 0)},
		{"Disabled with future date", false, now.AddDate(0, 3, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, ruleRepo, liabilityRepo := setup()

			rule := ruleFor(uuid.New(), "100")
			rule.Enabled = tt.enabled
			rule.NextExecutionDate = tt.next

			exec, err := service.ExecuteRule(ctx, rule)

			assert.NoError(t, err)
			assert.Nil(t, exec)
			liabilityRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			ruleRepo.AssertNotCalled(t, "RecordExecution", mock.Anything, mock.Anything)
		})
	}
}

func TestExecuteRule_AlreadyExecutedByAnotherRun(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, liabilityRepo := setup()

	liability := loan("10000")
	rule := ruleFor(liability.ID, "100")

	liabilityRepo.On("GetByID", ctx, liability.ID).Return(liability, nil)
	ruleRepo.On("RecordExecution", ctx, mock.AnythingOfType("*domain.RuleExecution")).
		Return(fmt.Errorf("payment rule %s: %w", rule.ID, domain.ErrRuleAlreadyExecuted))

	exec, err := service.ExecuteRule(ctx, rule)

	assert.NoError(t, err)
	assert.Nil(t, exec)
}

func TestExecuteDueRules_OverlappingRunCountsNothing(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, liabilityRepo := setup()

	liability := loan("10000")
	rule := ruleFor(liability.ID, "100")

	ruleRepo.On("ListDue", ctx, now).Return([]domain.LiabilityPaymentRule{rule}, nil)
	liabilityRepo.On("GetByID", ctx, liability.ID).Return(liability, nil)
	ruleRepo.On("RecordExecution", ctx, mock.AnythingOfType("*domain.RuleExecution")).
		Return(domain.ErrRuleAlreadyExecuted)

	result, err := service.ExecuteDueRules(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Succeeded)
	assert.False(t, result.HasErrors())
}

func TestExecuteDueRules_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, liabilityRepo := setup()

	good := loan("500")
	paidOff := loan("0")
	missingID := uuid.New()

	goodRule := ruleFor(good.ID, "100")
	badFormula := ruleFor(good.ID, "balance; DROP TABLE liabilities")
	missing := ruleFor(missingID, "100")
	skipped := ruleFor(paidOff.ID, "100")

	ruleRepo.On("ListDue", ctx, now).Return([]domain.LiabilityPaymentRule{badFormula, missing, goodRule, skipped}, nil)
	liabilityRepo.On("GetByID", ctx, good.ID).Return(good, nil)
	liabilityRepo.On("GetByID", ctx, paidOff.ID).Return(paidOff, nil)
	liabilityRepo.On("GetByID", ctx, missingID).Return(nil, domain.NotFoundError("liability", missingID))
	ruleRepo.On("RecordExecution", ctx, mock.AnythingOfType("*domain.RuleExecution")).Return(nil).Once()

	result, err := service.ExecuteDueRules(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], badFormula.ID.String())
	assert.Contains(t, result.Errors[0], "invalid formula")
	assert.Equal(t, "Liability "+missingID.String()+" not found", result.Errors[1])
	assert.Contains(t, result.Message("Executed", "payments"), "Executed 1 payments with 2 errors")
	ruleRepo.AssertExpectations(t)
}

func TestExecuteDueRules_PersistenceFailureIsPerRule(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, liabilityRepo := setup()

	first := loan("500")
	second := loan("800")
	r1 := ruleFor(first.ID, "100")
	r2 := ruleFor(second.ID, "100")

	ruleRepo.On("ListDue", ctx, now).Return([]domain.LiabilityPaymentRule{r1, r2}, nil)
	liabilityRepo.On("GetByID", ctx, first.ID).Return(first, nil)
	liabilityRepo.On("GetByID", ctx, second.ID).Return(second, nil)
	ruleRepo.On("RecordExecution", ctx, mock.MatchedBy(func(exec *domain.RuleExecution) bool {
		return exec.Rule.ID == r1.ID
	})).Return(errors.New("deadlock detected"))
	ruleRepo.On("RecordExecution", ctx, mock.MatchedBy(func(exec *domain.RuleExecution) bool {
		return exec.Rule.ID == r2.ID
	})).Return(nil)

	result, err := service.ExecuteDueRules(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "deadlock detected")
}

func TestExecuteDueRules_ListFailure(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _ := setup()

	ruleRepo.On("ListDue", ctx, now).Return(nil, errors.New("connection refused"))

	result, err := service.ExecuteDueRules(ctx)

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestExecuteDueRules_NothingDue(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _ := setup()

	ruleRepo.On("ListDue", ctx, now).Return([]domain.LiabilityPaymentRule{}, nil)

	result, err := service.ExecuteDueRules(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Succeeded)
	assert.False(t, result.HasErrors())
}

func TestCreateRule(t *testing.T) {
	ctx := context.Background()
	liability := loan("1000")

	t.Run("Valid rule is created enabled", func(t *testing.T) {
		service, ruleRepo, liabilityRepo := setup()
		liabilityRepo.On("GetByID", ctx, liability.ID).Return(liability, nil)
		ruleRepo.On("Create", ctx, mock.AnythingOfType("*domain.LiabilityPaymentRule")).Return(nil)

		rule, err := service.CreateRule(ctx, liability.ID, "Weekly", " balance * interestRate / 1200 + 25 ", now.AddDate(0, 0, 7))

		require.NoError(t, err)
		assert.True(t, rule.Enabled)
		assert.Equal(t, domain.FrequencyWeekly, rule.Frequency)
		assert.Equal(t, "balance * interestRate / 1200 + 25", rule.FormulaExpression)
	})

	t.Run("Today is accepted", func(t *testing.T) {
		service, ruleRepo, liabilityRepo := setup()
		liabilityRepo.On("GetByID", ctx, liability.ID).Return(liability, nil)
		ruleRepo.On("Create", ctx, mock.Anything).Return(nil)

		_, err := service.CreateRule(ctx, liability.ID, "monthly", "100", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

		assert.NoError(t, err)
	})

	tests := []struct {
		name      string
		frequency string
		formula   string
		next      time.Time
		wantErr   error
	}{
		{"Unknown frequency", "hourly", "100", now.AddDate(0, 0, 1), domain.ErrInvalidFrequency},
		{"Injected formula", "monthly", "process.exit()", now.AddDate(0, 0, 1), domain.ErrInvalidFormula},
		{"Unbalanced formula", "monthly", "(balance * 2", now.AddDate(0, 0, 1), domain.ErrInvalidFormula},
		{"Past date", "monthly", "100", now.AddDate(0, 0, -1), domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, ruleRepo, liabilityRepo := setup()
			liabilityRepo.On("GetByID", ctx, liability.ID).Return(liability, nil)

			_, err := service.CreateRule(ctx, liability.ID, tt.frequency, tt.formula, tt.next)

			assert.ErrorIs(t, err, tt.wantErr)
			ruleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("Unknown liability", func(t *testing.T) {
		service, _, liabilityRepo := setup()
		id := uuid.New()
		liabilityRepo.On("GetByID", ctx, id).Return(nil, domain.NotFoundError("liability", id))

		_, err := service.CreateRule(ctx, id, "monthly", "100", now)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUpdateRule(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _ := setup()

	rule := ruleFor(uuid.New(), "100")
	ruleRepo.On("GetByID", ctx, rule.ID).Return(&rule, nil)
	ruleRepo.On("Update", ctx, mock.AnythingOfType("*domain.LiabilityPaymentRule")).Return(nil)

	disabled := false
	expr := "balance * 0.05"
	updated, err := service.UpdateRule(ctx, rule.ID, RuleUpdate{Enabled: &disabled, FormulaExpression: &expr})

	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, expr, updated.FormulaExpression)
	assert.Equal(t, domain.FrequencyMonthly, updated.Frequency)

	bad := "balance ** 2"
	_, err = service.UpdateRule(ctx, rule.ID, RuleUpdate{FormulaExpression: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidFormula)
}

func TestDeleteRule(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _ := setup()
	id := uuid.New()

	ruleRepo.On("Delete", ctx, id).Return(nil)

	assert.NoError(t, service.DeleteRule(ctx, id))
	ruleRepo.AssertExpectations(t)
}
