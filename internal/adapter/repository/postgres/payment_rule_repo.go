package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/networth-backend/internal/domain"
)

type paymentRuleRepository struct {
	db *DB
}

// NewPaymentRuleRepository creates a new PostgreSQL payment rule repository
func NewPaymentRuleRepository(db *DB) domain.PaymentRuleRepository {
	return &paymentRuleRepository{db: db}
}

const paymentRuleColumns = `id, liability_id, frequency, formula_expression, enabled, next_execution_date, last_execution_date, created_at`

// Create creates a new rule
func (r *paymentRuleRepository) Create(ctx context.Context, rule *domain.LiabilityPaymentRule) error {
	query := `
		INSERT INTO liability_payment_rules (id, liability_id, frequency, formula_expression, enabled, next_execution_date, last_execution_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.LiabilityID,
		string(rule.Frequency),
		rule.FormulaExpression,
		rule.Enabled,
		rule.NextExecutionDate,
		rule.LastExecutionDate,
		rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment rule: %w", err)
	}
	return nil
}

// GetByID retrieves a rule by its ID
func (r *paymentRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LiabilityPaymentRule, error) {
	query := `SELECT ` + paymentRuleColumns + ` FROM liability_payment_rules WHERE id = $1`

	rule, err := scanPaymentRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("payment rule", id)
		}
		return nil, fmt.Errorf("failed to get payment rule: %w", err)
	}
	return rule, nil
}

// ListByLiability returns the rules of one liability, newest first
func (r *paymentRuleRepository) ListByLiability(ctx context.Context, liabilityID uuid.UUID) ([]domain.LiabilityPaymentRule, error) {
	query := `SELECT ` + paymentRuleColumns + ` FROM liability_payment_rules WHERE liability_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, liabilityID)
}

// ListDue returns enabled rules whose next execution date has passed
func (r *paymentRuleRepository) ListDue(ctx context.Context, now time.Time) ([]domain.LiabilityPaymentRule, error) {
	query := `
		SELECT ` + paymentRuleColumns + `
		FROM liability_payment_rules
		WHERE enabled AND next_execution_date <= $1
		ORDER BY next_execution_date
	`
	return r.list(ctx, query, now)
}

// Update rewrites a rule's mutable fields
func (r *paymentRuleRepository) Update(ctx context.Context, rule *domain.LiabilityPaymentRule) error {
	result, err := r.db.ExecContext(ctx, updateRuleQuery,
		rule.ID,
		string(rule.Frequency),
		rule.FormulaExpression,
		rule.Enabled,
		rule.NextExecutionDate,
		rule.LastExecutionDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment rule: %w", err)
	}
	return expectOneRow(result, "payment rule", rule.ID)
}

// Delete removes a rule
func (r *paymentRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM liability_payment_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment rule: %w", err)
	}
	return expectOneRow(result, "payment rule", id)
}

// RecordExecution advances the rule, writes the payment and lowers the balance in one transaction.
// The rule is advanced first and only from exec.ScheduledFor, so of two overlapping runs
// only one books the payment.
func (r *paymentRuleRepository) RecordExecution(ctx context.Context, exec *domain.RuleExecution) error {
	return r.db.inTx(ctx, func(dbTx *sql.Tx) error {
		rule := exec.Rule
		query := `
			UPDATE liability_payment_rules
			SET next_execution_date = $2, last_execution_date = $3
			WHERE id = $1 AND enabled AND next_execution_date = $4
		`
		result, err := dbTx.ExecContext(ctx, query,
			rule.ID,
			rule.NextExecutionDate,
			rule.LastExecutionDate,
			exec.ScheduledFor,
		)
		if err != nil {
			return fmt.Errorf("failed to advance payment rule: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("payment rule %s: %w", rule.ID, domain.ErrRuleAlreadyExecuted)
		}

		if err := insertPayment(ctx, dbTx, &exec.Payment); err != nil {
			return err
		}
		balance, err := applyPayment(ctx, dbTx, &exec.Payment)
		if err != nil {
			return err
		}
		exec.NewBalance = balance
		return nil
	})
}

const updateRuleQuery = `
	UPDATE liability_payment_rules
	SET frequency = $2, formula_expression = $3, enabled = $4, next_execution_date = $5, last_execution_date = $6
	WHERE id = $1
`

func (r *paymentRuleRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.LiabilityPaymentRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.LiabilityPaymentRule
	for rows.Next() {
		rule, err := scanPaymentRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment rule: %w", err)
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rules: %w", err)
	}
	return rules, nil
}

func scanPaymentRule(row rowScanner) (*domain.LiabilityPaymentRule, error) {
	var (
		rule          domain.LiabilityPaymentRule
		frequency     string
		lastExecution sql.NullTime
	)

	err := row.Scan(
		&rule.ID,
		&rule.LiabilityID,
		&frequency,
		&rule.FormulaExpression,
		&rule.Enabled,
		&rule.NextExecutionDate,
		&lastExecution,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.Frequency = domain.Frequency(frequency)
	rule.LastExecutionDate = timePtr(lastExecution)
	return &rule, nil
}
