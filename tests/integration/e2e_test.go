//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/networth-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/networth-backend/internal/config"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/dividend"
	"github.com/simaogato/networth-backend/internal/usecase/investment"
	"github.com/simaogato/networth-backend/internal/usecase/liability"
	"github.com/simaogato/networth-backend/internal/usecase/paymentrule"
)

var db *postgres.DB

// TestMain connects to the database described by the usual DB_* variables and applies the schema
func TestMain(m *testing.M) {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	db, err = postgres.NewDB(cfg.DatabaseURL)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	if err := db.Migrate(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	code := m.Run()
	db.Close()
	os.Exit(code)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func manualPayment(liabilityID uuid.UUID, amount string) *domain.LiabilityPayment {
	return &domain.LiabilityPayment{
		ID:          uuid.New(),
		LiabilityID: liabilityID,
		Date:        time.Now(),
		Amount:      dec(amount),
		Type:        domain.PaymentTypeManual,
		CreatedAt:   time.Now(),
	}
}

// TestInvestmentFlow records trades against a real database and checks the FIFO numbers
func TestInvestmentFlow(t *testing.T) {
	ctx := context.Background()
	assets := postgres.NewAssetRepository(db)
	transactions := postgres.NewTransactionRepository(db)
	dividends := postgres.NewDividendRepository(db)

	// No symbol, so the projection never calls the market data provider
	service := investment.NewInvestmentService(assets, transactions, dividends, nil, zerolog.Nop())

	asset := &domain.Asset{
		Name:     "Private fund " + uuid.NewString()[:8],
		Type:     domain.AssetTypeInvestment,
		Value:    dec("0"),
		Currency: "usd",
	}
	require.NoError(t, service.CreateAsset(ctx, asset))

	trades := []domain.Transaction{
		{AssetID: asset.ID, Type: domain.TransactionTypeBuy, Date: day(2024, 1, 1), Quantity: dec("10"), PricePerShare: dec("100")},
		{AssetID: asset.ID, Type: domain.TransactionTypeBuy, Date: day(2024, 2, 1), Quantity: dec("5"), PricePerShare: dec("120")},
		{AssetID: asset.ID, Type: domain.TransactionTypeSell, Date: day(2024, 3, 1), Quantity: dec("12"), PricePerShare: dec("130")},
	}
	for i := range trades {
		_, err := service.CreateTransaction(ctx, &trades[i])
		require.NoError(t, err)
	}

	stored, err := assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, dec("3").Equal(stored.UnitQuantity()), "quantity %s", stored.UnitQuantity())
	assert.Equal(t, "USD", stored.Currency)

	_, err = service.UpdateMarketValue(ctx, asset.ID, dec("450"))
	require.NoError(t, err)

	profit, err := service.CalculateProfit(ctx, asset.ID)
	require.NoError(t, err)

	// Sold 10@100 and 2@120: realized (130-100)*10 + (130-120)*2
	assert.True(t, dec("320").Equal(profit.RealizedGain), "realized %s", profit.RealizedGain)
	// 3 open @120 = 360 cost, worth 450
	assert.True(t, dec("360").Equal(profit.TotalCost), "cost %s", profit.TotalCost)
	assert.True(t, dec("90").Equal(profit.UnrealizedGain), "unrealized %s", profit.UnrealizedGain)

	// Deleting the sell restores the full position
	_, err = service.DeleteTransaction(ctx, trades[2].ID)
	require.NoError(t, err)
	stored, err = assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, dec("15").Equal(stored.UnitQuantity()))
}

// TestDividendReplace checks that stored dividends are swapped wholesale
func TestDividendReplace(t *testing.T) {
	ctx := context.Background()
	assets := postgres.NewAssetRepository(db)
	transactions := postgres.NewTransactionRepository(db)
	dividends := postgres.NewDividendRepository(db)
	inv := investment.NewInvestmentService(assets, transactions, dividends, nil, zerolog.Nop())

	asset := &domain.Asset{Name: "Dividend payer", Type: domain.AssetTypeInvestment, Currency: "USD"}
	require.NoError(t, inv.CreateAsset(ctx, asset))

	_, err := inv.CreateTransaction(ctx, &domain.Transaction{
		AssetID: asset.ID, Type: domain.TransactionTypeBuy, Date: day(2024, 1, 1), Quantity: dec("10"), PricePerShare: dec("50"),
	})
	require.NoError(t, err)

	first := []domain.Dividend{
		{ID: uuid.New(), ExDate: day(2024, 3, 1), Amount: dec("0.50"), Currency: "USD", Type: domain.DividendTypeCash},
		{ID: uuid.New(), ExDate: day(2024, 6, 1), Amount: dec("0.50"), Currency: "USD", Type: domain.DividendTypeCash},
	}
	require.NoError(t, dividends.ReplaceForAsset(ctx, asset.ID, first))

	second := []domain.Dividend{
		{ID: uuid.New(), ExDate: day(2024, 9, 1), Amount: dec("0.75"), Currency: "USD", Type: domain.DividendTypeCash},
	}
	require.NoError(t, dividends.ReplaceForAsset(ctx, asset.ID, second))

	stored, err := dividends.ListByAsset(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, dec("0.75").Equal(stored[0].Amount))

	divService := dividend.NewDividendService(assets, transactions, dividends, nil, zerolog.Nop())
	payouts, err := divService.Payouts(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.True(t, dec("7.5").Equal(payouts[0].TotalPayout))
}

// TestLiabilityFlow pays down a loan by hand and through a rule
func TestLiabilityFlow(t *testing.T) {
	ctx := context.Background()
	liabilities := postgres.NewLiabilityRepository(db)
	rules := postgres.NewPaymentRuleRepository(db)

	liabilityService := liability.NewLiabilityService(liabilities, zerolog.Nop())
	ruleService := paymentrule.NewPaymentRuleService(rules, liabilities, zerolog.Nop())

	loan := &domain.Liability{
		Name:         "Car loan " + uuid.NewString()[:8],
		Type:         "loan",
		Balance:      dec("10000"),
		InterestRate: decimal.NewNullDecimal(dec("12")),
		Currency:     "USD",
	}
	require.NoError(t, liabilityService.CreateLiability(ctx, loan))

	// Manual payment: 100 interest, 100 principal
	_, err := liabilityService.RecordManualPayment(ctx, loan.ID, dec("200"), time.Now(), "first")
	require.NoError(t, err)

	stored, err := liabilities.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, dec("9800").Equal(stored.Balance), "balance %s", stored.Balance)
	require.NotNil(t, stored.LastPaymentDate)

	// Rule dated today fires immediately
	rule, err := ruleService.CreateRule(ctx, loan.ID, "monthly", "balance * 0.02 + 50", time.Now())
	require.NoError(t, err)

	exec, err := ruleService.ExecuteRule(ctx, *rule)
	require.NoError(t, err)
	require.NotNil(t, exec)
	// 9800 * 0.02 + 50
	assert.True(t, dec("246").Equal(exec.Payment.Amount), "payment %s", exec.Payment.Amount)

	storedRule, err := rules.GetByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.True(t, storedRule.NextExecutionDate.After(rule.NextExecutionDate))
	require.NotNil(t, storedRule.LastExecutionDate)

	m, err := liabilityService.Metrics(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, m.PaymentCount)
	assert.True(t, dec("446").Equal(m.TotalPaid), "paid %s", m.TotalPaid)
	assert.True(t, dec("9554").Equal(m.CurrentBalance), "balance %s", m.CurrentBalance)

	// A second run holding the old schedule finds the slot already taken
	again, err := ruleService.ExecuteRule(ctx, *rule)
	require.NoError(t, err)
	assert.Nil(t, again)

	m, err = liabilityService.Metrics(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, m.PaymentCount)
	assert.True(t, dec("9554").Equal(m.CurrentBalance), "balance %s", m.CurrentBalance)

	// Payments apply relative to the stored balance, so two writers from the same read both count
	_, err = liabilities.RecordPayment(ctx, manualPayment(loan.ID, "54"))
	require.NoError(t, err)
	balance, err := liabilities.RecordPayment(ctx, manualPayment(loan.ID, "500"))
	require.NoError(t, err)
	assert.True(t, dec("9000").Equal(balance), "balance %s", balance)

	require.NoError(t, ruleService.DeleteRule(ctx, rule.ID))
	_, err = rules.GetByID(ctx, rule.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
