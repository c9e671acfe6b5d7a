package grpc

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/costbasis"
	"github.com/simaogato/networth-backend/internal/usecase/dashboard"
	"github.com/simaogato/networth-backend/internal/usecase/dividend"
	"github.com/simaogato/networth-backend/internal/usecase/investment"
	"github.com/simaogato/networth-backend/internal/usecase/liability"
	"github.com/simaogato/networth-backend/internal/usecase/paymentrule"
)

// Server implements the FinanceService gRPC server
type Server struct {
	InvestmentService  *investment.InvestmentService
	DividendService    *dividend.DividendService
	LiabilityService   *liability.LiabilityService
	PaymentRuleService *paymentrule.PaymentRuleService
	DashboardService   *dashboard.DashboardService

	log zerolog.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(
	investmentService *investment.InvestmentService,
	dividendService *dividend.DividendService,
	liabilityService *liability.LiabilityService,
	paymentRuleService *paymentrule.PaymentRuleService,
	dashboardService *dashboard.DashboardService,
	log zerolog.Logger,
) *Server {
	return &Server{
		InvestmentService:  investmentService,
		DividendService:    dividendService,
		LiabilityService:   liabilityService,
		PaymentRuleService: paymentRuleService,
		DashboardService:   dashboardService,
		log:                log.With().Str("component", "grpc").Logger(),
	}
}

// ComputeProfit handles the ComputeProfit RPC
func (s *Server) ComputeProfit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assetID, err := uuidField(req, "asset_id")
	if err != nil {
		return nil, err
	}

	result, err := s.InvestmentService.CalculateProfit(ctx, assetID)
	if err != nil {
		return nil, s.mapError(err)
	}

	fields := profitFields(result)
	fields["asset_id"] = assetID.String()
	return newResponse(fields)
}

// ComputeDividendMetrics handles the ComputeDividendMetrics RPC
func (s *Server) ComputeDividendMetrics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assetID, err := uuidField(req, "asset_id")
	if err != nil {
		return nil, err
	}

	m, err := s.DividendService.Metrics(ctx, assetID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"asset_id":        assetID.String(),
		"total_dividends": m.TotalDividends.String(),
		"ytd_dividends":   m.YTDDividends.String(),
		"dividend_yield":  m.DividendYield.String(),
		"count":           m.Count,
	})
}

// ListDividendPayouts handles the ListDividendPayouts RPC
func (s *Server) ListDividendPayouts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assetID, err := uuidField(req, "asset_id")
	if err != nil {
		return nil, err
	}

	payouts, err := s.DividendService.Payouts(ctx, assetID)
	if err != nil {
		return nil, s.mapError(err)
	}

	items := make([]interface{}, 0, len(payouts))
	total := decimal.Zero
	for _, p := range payouts {
		total = total.Add(p.TotalPayout)
		items = append(items, map[string]interface{}{
			"id":           p.ID.String(),
			"ex_date":      p.ExDate.Format(dateLayout),
			"payment_date": formatOptionalTime(p.PaymentDate),
			"amount":       p.Amount.String(),
			"currency":     p.Currency,
			"shares_held":  p.SharesHeld.String(),
			"total_payout": p.TotalPayout.String(),
		})
	}

	return newResponse(map[string]interface{}{
		"asset_id": assetID.String(),
		"payouts":  items,
		"total":    total.String(),
	})
}

// ComputeLiabilityMetrics handles the ComputeLiabilityMetrics RPC
func (s *Server) ComputeLiabilityMetrics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	liabilityID, err := uuidField(req, "liability_id")
	if err != nil {
		return nil, err
	}

	m, err := s.LiabilityService.Metrics(ctx, liabilityID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"liability_id":         liabilityID.String(),
		"current_balance":      m.CurrentBalance.String(),
		"interest_rate":        m.InterestRate.String(),
		"total_paid":           m.TotalPaid.String(),
		"total_interest_paid":  m.TotalInterestPaid.String(),
		"total_principal_paid": m.TotalPrincipalPaid.String(),
		"ytd_paid":             m.YTDPaid.String(),
		"ytd_interest_paid":    m.YTDInterestPaid.String(),
		"ytd_principal_paid":   m.YTDPrincipalPaid.String(),
		"payment_count":        m.PaymentCount,
	})
}

// RecordManualPayment handles the RecordManualPayment RPC
func (s *Server) RecordManualPayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	liabilityID, err := uuidField(req, "liability_id")
	if err != nil {
		return nil, err
	}

	amount, err := decimalField(req, "amount")
	if err != nil {
		return nil, err
	}

	// Date defaults to now when omitted
	date, err := timeField(req, "date", s.LiabilityService.Clock())
	if err != nil {
		return nil, err
	}

	payment, err := s.LiabilityService.RecordManualPayment(ctx, liabilityID, amount, date, stringField(req, "notes"))
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"payment_id":        payment.ID.String(),
		"liability_id":      payment.LiabilityID.String(),
		"amount":            payment.Amount.String(),
		"principal_portion": payment.Principal().String(),
		"interest_portion":  payment.Interest().String(),
		"date":              formatTime(payment.Date),
	})
}

// ExecutePaymentRules handles the ExecutePaymentRules RPC
func (s *Server) ExecutePaymentRules(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.PaymentRuleService.ExecuteDueRules(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"payments_executed": result.Succeeded,
		"errors":            stringList(result.Errors),
		"message":           result.Message("Executed", "payments"),
	})
}

// CreatePaymentRule handles the CreatePaymentRule RPC
func (s *Server) CreatePaymentRule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	liabilityID, err := uuidField(req, "liability_id")
	if err != nil {
		return nil, err
	}

	next, err := timeField(req, "next_execution_date", s.PaymentRuleService.Clock())
	if err != nil {
		return nil, err
	}

	rule, err := s.PaymentRuleService.CreateRule(ctx, liabilityID, stringField(req, "frequency"), stringField(req, "formula_expression"), next)
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(ruleFields(rule))
}

// CreateTransaction handles the CreateTransaction RPC
func (s *Server) CreateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assetID, err := uuidField(req, "asset_id")
	if err != nil {
		return nil, err
	}

	quantity, err := decimalField(req, "quantity")
	if err != nil {
		return nil, err
	}

	price, err := decimalField(req, "price_per_share")
	if err != nil {
		return nil, err
	}

	date, err := timeField(req, "date", s.InvestmentService.Clock())
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		AssetID:       assetID,
		Type:          domain.TransactionType(stringField(req, "type")),
		Date:          date,
		Quantity:      quantity,
		PricePerShare: price,
		Notes:         stringField(req, "notes"),
	}

	asset, err := s.InvestmentService.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"transaction_id": tx.ID.String(),
		"asset":          assetFields(asset),
	})
}

// UpdateMarketValue handles the UpdateMarketValue RPC
func (s *Server) UpdateMarketValue(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assetID, err := uuidField(req, "asset_id")
	if err != nil {
		return nil, err
	}

	value, err := decimalField(req, "value")
	if err != nil {
		return nil, err
	}

	asset, err := s.InvestmentService.UpdateMarketValue(ctx, assetID, value)
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"asset": assetFields(asset),
	})
}

// GetNetWorth handles the GetNetWorth RPC
func (s *Server) GetNetWorth(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.DashboardService.GetNetWorth(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}

	byType := make(map[string]interface{}, len(result.ByType))
	for assetType, total := range result.ByType {
		byType[string(assetType)] = total.String()
	}

	return newResponse(map[string]interface{}{
		"total_net_worth":   result.Total.String(),
		"total_assets":      result.Assets.String(),
		"total_liabilities": result.Liabilities.String(),
		"assets_by_type":    byType,
	})
}

// GetPortfolioDividends handles the GetPortfolioDividends RPC
func (s *Server) GetPortfolioDividends(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	total, err := s.DividendService.PortfolioYTD(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"ytd_dividends": total.String(),
	})
}

func profitFields(result *costbasis.ProfitResult) map[string]interface{} {
	return map[string]interface{}{
		"total_shares":    result.TotalShares.String(),
		"avg_cost_basis":  result.AvgCostBasis.String(),
		"current_price":   result.CurrentPrice.String(),
		"current_value":   result.CurrentValue.String(),
		"total_cost":      result.TotalCost.String(),
		"unrealized_gain": result.UnrealizedGain.String(),
		"realized_gain":   result.RealizedGain.String(),
		"dividend_income": result.DividendIncome.String(),
		"total_gain":      result.TotalGain.String(),
		"gain_percentage": result.GainPercentage.String(),
	}
}

func ruleFields(rule *domain.LiabilityPaymentRule) map[string]interface{} {
	return map[string]interface{}{
		"rule_id":             rule.ID.String(),
		"liability_id":        rule.LiabilityID.String(),
		"frequency":           string(rule.Frequency),
		"formula_expression":  rule.FormulaExpression,
		"enabled":             rule.Enabled,
		"next_execution_date": formatTime(rule.NextExecutionDate),
		"last_execution_date": formatOptionalTime(rule.LastExecutionDate),
	}
}

func assetFields(asset *domain.Asset) map[string]interface{} {
	var quantity interface{}
	if asset.Quantity.Valid {
		quantity = asset.Quantity.Decimal.String()
	}

	return map[string]interface{}{
		"id":                asset.ID.String(),
		"name":              asset.Name,
		"type":              string(asset.Type),
		"category":          asset.Category,
		"symbol":            asset.Symbol,
		"quantity":          quantity,
		"value":             asset.Value.String(),
		"currency":          asset.Currency,
		"description":       asset.Description,
		"last_price_update": formatOptionalTime(asset.LastPriceUpdate),
	}
}

// mapError converts domain errors to gRPC status errors
func (s *Server) mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidFormula),
		errors.Is(err, domain.ErrInvalidFrequency):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	}

	s.log.Error().Err(err).Msg("Unhandled error in gRPC call")
	return status.Errorf(codes.Internal, "%s", err.Error())
}
