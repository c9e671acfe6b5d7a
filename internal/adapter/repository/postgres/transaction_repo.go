package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/networth-backend/internal/domain"
)

type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, asset_id, type, date, quantity, price_per_share, total_value, notes, created_at`

// Create records a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, asset_id, type, date, quantity, price_per_share, total_value, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.AssetID,
		string(tx.Type),
		tx.Date,
		tx.Quantity.String(),
		tx.PricePerShare.String(),
		tx.TotalValue.String(),
		tx.Notes,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by its ID
func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("transaction", id)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// Delete removes a transaction
func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectOneRow(result, "transaction", id)
}

// ListByAsset returns the transactions of one asset, newest first
func (r *transactionRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE asset_id = $1 ORDER BY date DESC, created_at DESC`
	return r.list(ctx, query, assetID)
}

// ListAll returns every transaction
func (r *transactionRepository) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date DESC, created_at DESC`
	return r.list(ctx, query)
}

func (r *transactionRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx                              domain.Transaction
		txType                          string
		quantityStr, priceStr, totalStr string
	)

	err := row.Scan(&tx.ID, &tx.AssetID, &txType, &tx.Date, &quantityStr, &priceStr, &totalStr, &tx.Notes, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}

	tx.Type = domain.TransactionType(txType)
	if tx.Quantity, err = parseDecimal("quantity", quantityStr); err != nil {
		return nil, err
	}
	if tx.PricePerShare, err = parseDecimal("price_per_share", priceStr); err != nil {
		return nil, err
	}
	if tx.TotalValue, err = parseDecimal("total_value", totalStr); err != nil {
		return nil, err
	}
	return &tx, nil
}
