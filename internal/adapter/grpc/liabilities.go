package grpc

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/liability"
	"github.com/simaogato/networth-backend/internal/usecase/paymentrule"
)

// CreateLiability handles the CreateLiability RPC
func (s *Server) CreateLiability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	balance, err := decimalField(req, "balance")
	if err != nil {
		return nil, err
	}

	rate, err := optionalDecimalField(req, "interest_rate")
	if err != nil {
		return nil, err
	}

	l := &domain.Liability{
		Name:        stringField(req, "name"),
		Type:        stringField(req, "type"),
		Balance:     balance,
		Currency:    stringField(req, "currency"),
		Description: stringField(req, "description"),
	}
	if rate != nil {
		l.InterestRate = decimal.NewNullDecimal(*rate)
	}

	if err := s.LiabilityService.CreateLiability(ctx, l); err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"liability": liabilityFields(l),
	})
}

// ListLiabilities handles the ListLiabilities RPC
func (s *Server) ListLiabilities(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	liabilities, err := s.LiabilityService.ListLiabilities(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}

	items := make([]interface{}, 0, len(liabilities))
	for i := range liabilities {
		items = append(items, liabilityFields(&liabilities[i]))
	}

	return newResponse(map[string]interface{}{
		"liabilities": items,
	})
}

// UpdateLiability handles the UpdateLiability RPC; absent fields are left unchanged
func (s *Server) UpdateLiability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	liabilityID, err := uuidField(req, "liability_id")
	if err != nil {
		return nil, err
	}

	balance, err := optionalDecimalField(req, "balance")
	if err != nil {
		return nil, err
	}

	rate, err := optionalDecimalField(req, "interest_rate")
	if err != nil {
		return nil, err
	}

	l, err := s.LiabilityService.UpdateLiability(ctx, liabilityID, liability.LiabilityUpdate{
		Name:         optionalStringField(req, "name"),
		Description:  optionalStringField(req, "description"),
		Balance:      balance,
		InterestRate: rate,
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"liability": liabilityFields(l),
	})
}

// DeleteLiability handles the DeleteLiability RPC
func (s *Server) DeleteLiability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	liabilityID, err := uuidField(req, "liability_id")
	if err != nil {
		return nil, err
	}

	if err := s.LiabilityService.DeleteLiability(ctx, liabilityID); err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"liability_id": liabilityID.String(),
		"success":      true,
	})
}

// ListPaymentRules handles the ListPaymentRules RPC
func (s *Server) ListPaymentRules(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	liabilityID, err := uuidField(req, "liability_id")
	if err != nil {
		return nil, err
	}

	rules, err := s.PaymentRuleService.ListRules(ctx, liabilityID)
	if err != nil {
		return nil, s.mapError(err)
	}

	items := make([]interface{}, 0, len(rules))
	for i := range rules {
		items = append(items, ruleFields(&rules[i]))
	}

	return newResponse(map[string]interface{}{
		"liability_id": liabilityID.String(),
		"rules":        items,
	})
}

// UpdatePaymentRule handles the UpdatePaymentRule RPC; absent fields are left unchanged
func (s *Server) UpdatePaymentRule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ruleID, err := uuidField(req, "rule_id")
	if err != nil {
		return nil, err
	}

	enabled, err := optionalBoolField(req, "enabled")
	if err != nil {
		return nil, err
	}

	next, err := optionalTimeField(req, "next_execution_date")
	if err != nil {
		return nil, err
	}

	rule, err := s.PaymentRuleService.UpdateRule(ctx, ruleID, paymentrule.RuleUpdate{
		Enabled:           enabled,
		FormulaExpression: optionalStringField(req, "formula_expression"),
		Frequency:         optionalStringField(req, "frequency"),
		NextExecutionDate: next,
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(ruleFields(rule))
}

// DeletePaymentRule handles the DeletePaymentRule RPC
func (s *Server) DeletePaymentRule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ruleID, err := uuidField(req, "rule_id")
	if err != nil {
		return nil, err
	}

	if err := s.PaymentRuleService.DeleteRule(ctx, ruleID); err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"rule_id": ruleID.String(),
		"success": true,
	})
}

func liabilityFields(l *domain.Liability) map[string]interface{} {
	var rate interface{}
	if l.InterestRate.Valid {
		rate = l.InterestRate.Decimal.String()
	}

	return map[string]interface{}{
		"id":                l.ID.String(),
		"name":              l.Name,
		"type":              l.Type,
		"balance":           l.Balance.String(),
		"interest_rate":     rate,
		"currency":          l.Currency,
		"description":       l.Description,
		"last_payment_date": formatOptionalTime(l.LastPaymentDate),
	}
}
