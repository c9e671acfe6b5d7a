package postgres

// Schema is the full table layout. Amounts are NUMERIC and read back as strings.
const Schema = `
CREATE TABLE IF NOT EXISTS assets (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    symbol TEXT NOT NULL DEFAULT '',
    quantity NUMERIC(20, 8),
    value NUMERIC(20, 2) NOT NULL DEFAULT 0,
    currency TEXT NOT NULL DEFAULT 'USD',
    description TEXT NOT NULL DEFAULT '',
    last_price_update TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
    id UUID PRIMARY KEY,
    asset_id UUID NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    date TIMESTAMPTZ NOT NULL,
    quantity NUMERIC(20, 8) NOT NULL,
    price_per_share NUMERIC(20, 8) NOT NULL,
    total_value NUMERIC(20, 2) NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_asset_date ON transactions(asset_id, date DESC);

CREATE TABLE IF NOT EXISTS dividends (
    id UUID PRIMARY KEY,
    asset_id UUID NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
    ex_date DATE NOT NULL,
    payment_date DATE,
    amount NUMERIC(20, 8) NOT NULL,
    currency TEXT NOT NULL DEFAULT 'USD',
    type TEXT NOT NULL DEFAULT 'cash',
    notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_dividends_asset_ex_date ON dividends(asset_id, ex_date DESC);

CREATE TABLE IF NOT EXISTS liabilities (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    balance NUMERIC(20, 2) NOT NULL,
    interest_rate NUMERIC(7, 4),
    currency TEXT NOT NULL DEFAULT 'USD',
    description TEXT NOT NULL DEFAULT '',
    last_payment_date TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS liability_payments (
    id UUID PRIMARY KEY,
    liability_id UUID NOT NULL REFERENCES liabilities(id) ON DELETE CASCADE,
    date TIMESTAMPTZ NOT NULL,
    amount NUMERIC(20, 2) NOT NULL,
    principal_portion NUMERIC(20, 2),
    interest_portion NUMERIC(20, 2),
    type TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_liability_payments_liability_date ON liability_payments(liability_id, date DESC);

CREATE TABLE IF NOT EXISTS liability_payment_rules (
    id UUID PRIMARY KEY,
    liability_id UUID NOT NULL REFERENCES liabilities(id) ON DELETE CASCADE,
    frequency TEXT NOT NULL,
    formula_expression TEXT NOT NULL,
    enabled BOOLEAN NOT NULL DEFAULT true,
    next_execution_date TIMESTAMPTZ NOT NULL,
    last_execution_date TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_payment_rules_due ON liability_payment_rules(next_execution_date) WHERE enabled;
`
