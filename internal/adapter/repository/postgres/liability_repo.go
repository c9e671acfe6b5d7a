package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
)

type liabilityRepository struct {
	db *DB
}

// NewLiabilityRepository creates a new PostgreSQL liability repository
func NewLiabilityRepository(db *DB) domain.LiabilityRepository {
	return &liabilityRepository{db: db}
}

const liabilityColumns = `id, name, type, balance, interest_rate, currency, description, last_payment_date, created_at, updated_at`

// GetByID retrieves a liability by its ID
func (r *liabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Liability, error) {
	query := `SELECT ` + liabilityColumns + ` FROM liabilities WHERE id = $1`

	liability, err := scanLiability(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("liability", id)
		}
		return nil, fmt.Errorf("failed to get liability: %w", err)
	}
	return liability, nil
}

// Create creates a new liability
func (r *liabilityRepository) Create(ctx context.Context, liability *domain.Liability) error {
	query := `
		INSERT INTO liabilities (id, name, type, balance, interest_rate, currency, description, last_payment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		liability.ID,
		liability.Name,
		liability.Type,
		liability.Balance.String(),
		nullDecimalArg(liability.InterestRate),
		liability.Currency,
		liability.Description,
		liability.LastPaymentDate,
		liability.CreatedAt,
		liability.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create liability: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a liability
func (r *liabilityRepository) Update(ctx context.Context, liability *domain.Liability) error {
	query := `
		UPDATE liabilities
		SET name = $2, type = $3, balance = $4, interest_rate = $5, description = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		liability.ID,
		liability.Name,
		liability.Type,
		liability.Balance.String(),
		nullDecimalArg(liability.InterestRate),
		liability.Description,
		liability.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update liability: %w", err)
	}
	return expectOneRow(result, "liability", liability.ID)
}

// Delete removes a liability; payments and rules go with it
func (r *liabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM liabilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete liability: %w", err)
	}
	return expectOneRow(result, "liability", id)
}

// List returns all liabilities ordered by name
func (r *liabilityRepository) List(ctx context.Context) ([]domain.Liability, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+liabilityColumns+` FROM liabilities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}
	defer rows.Close()

	var liabilities []domain.Liability
	for rows.Next() {
		liability, err := scanLiability(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liability: %w", err)
		}
		liabilities = append(liabilities, *liability)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating liabilities: %w", err)
	}
	return liabilities, nil
}

// ListPayments returns the payments of one liability, newest first
func (r *liabilityRepository) ListPayments(ctx context.Context, liabilityID uuid.UUID) ([]domain.LiabilityPayment, error) {
	query := `
		SELECT id, liability_id, date, amount, principal_portion, interest_portion, type, notes, created_at
		FROM liability_payments
		WHERE liability_id = $1
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, liabilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.LiabilityPayment
	for rows.Next() {
		var (
			p                         domain.LiabilityPayment
			amountStr                 string
			principalStr, interestStr sql.NullString
			paymentType               string
		)
		if err := rows.Scan(&p.ID, &p.LiabilityID, &p.Date, &amountStr, &principalStr, &interestStr, &paymentType, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		if p.Amount, err = parseDecimal("amount", amountStr); err != nil {
			return nil, err
		}
		if p.PrincipalPortion, err = parseNullDecimal("principal_portion", principalStr); err != nil {
			return nil, err
		}
		if p.InterestPortion, err = parseNullDecimal("interest_portion", interestStr); err != nil {
			return nil, err
		}
		p.Type = domain.PaymentType(paymentType)
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

// RecordPayment appends a payment and lowers the balance in one transaction
func (r *liabilityRepository) RecordPayment(ctx context.Context, payment *domain.LiabilityPayment) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.inTx(ctx, func(dbTx *sql.Tx) error {
		if err := insertPayment(ctx, dbTx, payment); err != nil {
			return err
		}
		var err error
		balance, err = applyPayment(ctx, dbTx, payment)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func insertPayment(ctx context.Context, dbTx *sql.Tx, payment *domain.LiabilityPayment) error {
	query := `
		INSERT INTO liability_payments (id, liability_id, date, amount, principal_portion, interest_portion, type, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := dbTx.ExecContext(ctx, query,
		payment.ID,
		payment.LiabilityID,
		payment.Date,
		payment.Amount.String(),
		nullDecimalArg(payment.PrincipalPortion),
		nullDecimalArg(payment.InterestPortion),
		string(payment.Type),
		payment.Notes,
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// applyPayment subtracts the payment from the stored balance, so concurrent payments all count
func applyPayment(ctx context.Context, dbTx *sql.Tx, payment *domain.LiabilityPayment) (decimal.Decimal, error) {
	query := `
		UPDATE liabilities
		SET balance = GREATEST(balance - $2, 0), last_payment_date = $3, updated_at = now()
		WHERE id = $1
		RETURNING balance
	`

	var balanceStr string
	err := dbTx.QueryRowContext(ctx, query, payment.LiabilityID, payment.Amount.String(), payment.Date).Scan(&balanceStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, domain.NotFoundError("liability", payment.LiabilityID)
		}
		return decimal.Zero, fmt.Errorf("failed to update liability balance: %w", err)
	}
	return parseDecimal("balance", balanceStr)
}

func scanLiability(row rowScanner) (*domain.Liability, error) {
	var (
		liability       domain.Liability
		balanceStr      string
		rateStr         sql.NullString
		lastPaymentDate sql.NullTime
	)

	err := row.Scan(
		&liability.ID,
		&liability.Name,
		&liability.Type,
		&balanceStr,
		&rateStr,
		&liability.Currency,
		&liability.Description,
		&lastPaymentDate,
		&liability.CreatedAt,
		&liability.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if liability.Balance, err = parseDecimal("balance", balanceStr); err != nil {
		return nil, err
	}
	if liability.InterestRate, err = parseNullDecimal("interest_rate", rateStr); err != nil {
		return nil, err
	}
	liability.LastPaymentDate = timePtr(lastPaymentDate)

	return &liability, nil
}
