package grpc

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/networth-backend/internal/domain"
)

// CreateAsset handles the CreateAsset RPC
func (s *Server) CreateAsset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	value, err := optionalDecimalField(req, "value")
	if err != nil {
		return nil, err
	}

	quantity, err := optionalDecimalField(req, "quantity")
	if err != nil {
		return nil, err
	}

	asset := &domain.Asset{
		Name:        stringField(req, "name"),
		Type:        domain.AssetType(stringField(req, "type")),
		Category:    stringField(req, "category"),
		Symbol:      stringField(req, "symbol"),
		Currency:    stringField(req, "currency"),
		Description: stringField(req, "description"),
		Value:       decimal.Zero,
	}
	if value != nil {
		asset.Value = *value
	}
	if quantity != nil {
		asset.Quantity = decimal.NewNullDecimal(*quantity)
	}

	if err := s.InvestmentService.CreateAsset(ctx, asset); err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"asset": assetFields(asset),
	})
}

// ListAssets handles the ListAssets RPC
func (s *Server) ListAssets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assets, err := s.InvestmentService.ListAssets(ctx, domain.AssetType(stringField(req, "type")))
	if err != nil {
		return nil, s.mapError(err)
	}

	items := make([]interface{}, 0, len(assets))
	for i := range assets {
		items = append(items, assetFields(&assets[i]))
	}

	return newResponse(map[string]interface{}{
		"assets": items,
	})
}

// DeleteAsset handles the DeleteAsset RPC
func (s *Server) DeleteAsset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assetID, err := uuidField(req, "asset_id")
	if err != nil {
		return nil, err
	}

	if err := s.InvestmentService.DeleteAsset(ctx, assetID); err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"asset_id": assetID.String(),
		"success":  true,
	})
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assetID, err := uuidField(req, "asset_id")
	if err != nil {
		return nil, err
	}

	transactions, err := s.InvestmentService.ListTransactions(ctx, assetID)
	if err != nil {
		return nil, s.mapError(err)
	}

	items := make([]interface{}, 0, len(transactions))
	for _, tx := range transactions {
		items = append(items, map[string]interface{}{
			"id":              tx.ID.String(),
			"type":            string(tx.Type),
			"date":            formatTime(tx.Date),
			"quantity":        tx.Quantity.String(),
			"price_per_share": tx.PricePerShare.String(),
			"total_value":     tx.TotalValue.String(),
			"notes":           tx.Notes,
		})
	}

	return newResponse(map[string]interface{}{
		"asset_id":     assetID.String(),
		"transactions": items,
	})
}

// DeleteTransaction handles the DeleteTransaction RPC.
// The response carries the owning asset after its projection was recomputed.
func (s *Server) DeleteTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	transactionID, err := uuidField(req, "transaction_id")
	if err != nil {
		return nil, err
	}

	asset, err := s.InvestmentService.DeleteTransaction(ctx, transactionID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"transaction_id": transactionID.String(),
		"asset":          assetFields(asset),
	})
}

// ComputeProfits handles the ComputeProfits RPC.
// Without asset_ids every investment asset is computed.
func (s *Server) ComputeProfits(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ids, err := uuidListField(req, "asset_ids")
	if err != nil {
		return nil, err
	}

	results, err := s.InvestmentService.CalculateProfits(ctx, ids)
	if err != nil {
		return nil, s.mapError(err)
	}

	byAsset := make(map[string]interface{}, len(results))
	for id, result := range results {
		byAsset[id.String()] = profitFields(&result)
	}

	return newResponse(map[string]interface{}{
		"results": byAsset,
	})
}

// SyncDividends handles the SyncDividends RPC
func (s *Server) SyncDividends(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assetID, err := uuidField(req, "asset_id")
	if err != nil {
		return nil, err
	}

	stored, err := s.DividendService.FetchAndStore(ctx, assetID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return newResponse(map[string]interface{}{
		"asset_id":         assetID.String(),
		"dividends_stored": stored,
	})
}
