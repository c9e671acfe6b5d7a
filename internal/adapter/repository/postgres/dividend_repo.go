package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/networth-backend/internal/domain"
)

type dividendRepository struct {
	db *DB
}

// NewDividendRepository creates a new PostgreSQL dividend repository
func NewDividendRepository(db *DB) domain.DividendRepository {
	return &dividendRepository{db: db}
}

const dividendColumns = `id, asset_id, ex_date, payment_date, amount, currency, type, notes`

// ListByAsset returns the dividends of one asset, newest ex-date first
func (r *dividendRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]domain.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE asset_id = $1 ORDER BY ex_date DESC`
	return r.list(ctx, query, assetID)
}

// ListAll returns every dividend
func (r *dividendRepository) ListAll(ctx context.Context) ([]domain.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends ORDER BY ex_date DESC`
	return r.list(ctx, query)
}

// ReplaceForAsset swaps the stored dividends of an asset inside one transaction
func (r *dividendRepository) ReplaceForAsset(ctx context.Context, assetID uuid.UUID, dividends []domain.Dividend) error {
	return r.db.inTx(ctx, func(dbTx *sql.Tx) error {
		if _, err := dbTx.ExecContext(ctx, `DELETE FROM dividends WHERE asset_id = $1`, assetID); err != nil {
			return fmt.Errorf("failed to delete dividends: %w", err)
		}

		insert := `
			INSERT INTO dividends (id, asset_id, ex_date, payment_date, amount, currency, type, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		for _, d := range dividends {
			_, err := dbTx.ExecContext(ctx, insert,
				d.ID,
				assetID,
				d.ExDate,
				d.PaymentDate,
				d.Amount.String(),
				d.Currency,
				string(d.Type),
				d.Notes,
			)
			if err != nil {
				return fmt.Errorf("failed to insert dividend: %w", err)
			}
		}
		return nil
	})
}

func (r *dividendRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Dividend, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividends: %w", err)
	}
	defer rows.Close()

	var dividends []domain.Dividend
	for rows.Next() {
		var (
			d           domain.Dividend
			paymentDate sql.NullTime
			amountStr   string
			divType     string
		)
		if err := rows.Scan(&d.ID, &d.AssetID, &d.ExDate, &paymentDate, &amountStr, &d.Currency, &divType, &d.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan dividend: %w", err)
		}

		if d.Amount, err = parseDecimal("amount", amountStr); err != nil {
			return nil, err
		}
		d.PaymentDate = timePtr(paymentDate)
		d.Type = domain.DividendType(divType)
		dividends = append(dividends, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividends: %w", err)
	}
	return dividends, nil
}
