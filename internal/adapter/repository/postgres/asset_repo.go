package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/networth-backend/internal/domain"
)

type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new PostgreSQL asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

const assetColumns = `id, name, type, category, symbol, quantity, value, currency, description, last_price_update, created_at, updated_at`

// GetByID retrieves an asset by its ID
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	asset, err := scanAsset(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("asset", id)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return asset, nil
}

// Create creates a new asset
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, name, type, category, symbol, quantity, value, currency, description, last_price_update, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID,
		asset.Name,
		string(asset.Type),
		asset.Category,
		asset.Symbol,
		nullDecimalArg(asset.Quantity),
		asset.Value.String(),
		asset.Currency,
		asset.Description,
		asset.LastPriceUpdate,
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// Update rewrites the projection fields of an asset
func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	query := `
		UPDATE assets
		SET quantity = $2, value = $3, currency = $4, last_price_update = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		asset.ID,
		nullDecimalArg(asset.Quantity),
		asset.Value.String(),
		asset.Currency,
		asset.LastPriceUpdate,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	return expectOneRow(result, "asset", asset.ID)
}

// Delete removes an asset; transactions and dividends go with it
func (r *assetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return expectOneRow(result, "asset", id)
}

// List retrieves assets, optionally filtered by type
func (r *assetRepository) List(ctx context.Context, typeFilter domain.AssetType) ([]domain.Asset, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if typeFilter == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY name`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE type = $1 ORDER BY name`, string(typeFilter))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}
	return assets, nil
}

func scanAsset(row rowScanner) (*domain.Asset, error) {
	var (
		asset           domain.Asset
		assetType       string
		quantityStr     sql.NullString
		valueStr        string
		lastPriceUpdate sql.NullTime
	)

	err := row.Scan(
		&asset.ID,
		&asset.Name,
		&assetType,
		&asset.Category,
		&asset.Symbol,
		&quantityStr,
		&valueStr,
		&asset.Currency,
		&asset.Description,
		&lastPriceUpdate,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	asset.Type = domain.AssetType(assetType)
	if asset.Quantity, err = parseNullDecimal("quantity", quantityStr); err != nil {
		return nil, err
	}
	if asset.Value, err = parseDecimal("value", valueStr); err != nil {
		return nil, err
	}
	asset.LastPriceUpdate = timePtr(lastPriceUpdate)

	return &asset, nil
}

// expectOneRow turns a zero-row UPDATE or DELETE into a not-found error
func expectOneRow(result sql.Result, kind string, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundError(kind, id)
	}
	return nil
}
