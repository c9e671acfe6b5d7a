package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	// GetByID retrieves an asset by its ID, wrapping ErrNotFound when absent
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// Create creates a new asset
	Create(ctx context.Context, asset *Asset) error

	// Update rewrites the mutable fields of an asset (quantity, value, currency, price timestamp)
	Update(ctx context.Context, asset *Asset) error

	// List retrieves assets, optionally filtered by type
	// If typeFilter is empty, returns all assets
	List(ctx context.Context, typeFilter AssetType) ([]Asset, error)

	// Delete removes an asset together with its transactions and dividends
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository defines the interface for asset transaction persistence operations
type TransactionRepository interface {
	// Create records a new transaction
	Create(ctx context.Context, tx *Transaction) error

	// GetByID retrieves a transaction by its ID, wrapping ErrNotFound when absent
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// Delete removes a transaction
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByAsset returns the transactions of one asset, newest first
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]Transaction, error)

	// ListAll returns every transaction of every asset
	ListAll(ctx context.Context) ([]Transaction, error)
}

// DividendRepository defines the interface for dividend persistence operations
type DividendRepository interface {
	// ListByAsset returns the dividends of one asset, newest ex-date first
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]Dividend, error)

	// ListAll returns every dividend of every asset
	ListAll(ctx context.Context) ([]Dividend, error)

	// ReplaceForAsset deletes all dividends of an asset and inserts the given ones atomically
	ReplaceForAsset(ctx context.Context, assetID uuid.UUID, dividends []Dividend) error
}

// LiabilityRepository defines the interface for liability persistence operations
type LiabilityRepository interface {
	// GetByID retrieves a liability by its ID, wrapping ErrNotFound when absent
	GetByID(ctx context.Context, id uuid.UUID) (*Liability, error)

	// Create creates a new liability
	Create(ctx context.Context, liability *Liability) error

	// Update rewrites a liability's editable fields, including its balance
	Update(ctx context.Context, liability *Liability) error

	// Delete removes a liability together with its payments and rules
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns all liabilities
	List(ctx context.Context) ([]Liability, error)

	// ListPayments returns the payments of one liability, newest first
	ListPayments(ctx context.Context, liabilityID uuid.UUID) ([]LiabilityPayment, error)

	// RecordPayment appends a payment and lowers the stored balance by its amount, floored at 0,
	// in one transaction. It returns the balance after the payment.
	RecordPayment(ctx context.Context, payment *LiabilityPayment) (decimal.Decimal, error)
}

// PaymentRuleRepository defines the interface for recurring payment rule persistence operations
type PaymentRuleRepository interface {
	// Create creates a new rule
	Create(ctx context.Context, rule *LiabilityPaymentRule) error

	// GetByID retrieves a rule by its ID, wrapping ErrNotFound when absent
	GetByID(ctx context.Context, id uuid.UUID) (*LiabilityPaymentRule, error)

	// ListByLiability returns the rules of one liability, newest first
	ListByLiability(ctx context.Context, liabilityID uuid.UUID) ([]LiabilityPaymentRule, error)

	// ListDue returns enabled rules whose next execution date is at or before now
	ListDue(ctx context.Context, now time.Time) ([]LiabilityPaymentRule, error)

	// Update rewrites a rule's mutable fields
	Update(ctx context.Context, rule *LiabilityPaymentRule) error

	// Delete removes a rule
	Delete(ctx context.Context, id uuid.UUID) error

	// RecordExecution persists one rule firing atomically:
	// the automatic payment, the liability's new balance and the advanced rule.
	// It returns ErrRuleAlreadyExecuted when the stored rule no longer has exec.ScheduledFor
	// as its next execution date, and sets exec.NewBalance to the stored balance.
	RecordExecution(ctx context.Context, exec *RuleExecution) error
}
