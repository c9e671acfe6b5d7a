package formula

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vars(balance, rate int64) Variables {
	return Variables{Balance: decimal.NewFromInt(balance), InterestRate: decimal.NewFromInt(rate)}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		vars    Variables
		want    decimal.Decimal
	}{
		{
			name:    "Percentage of balance plus fixed amount",
			formula: "balance * 0.02 + 50",
			vars:    vars(1000, 5),
			want:    decimal.NewFromInt(70),
		},
		{
			name:    "Monthly interest only",
			formula: "balance * interestRate / 100 / 12",
			vars:    vars(10000, 12),
			want:    decimal.NewFromInt(100),
		},
		{
			name:    "Multiplication binds tighter than addition",
			formula: "2 + 3 * 4",
			vars:    vars(0, 0),
			want:    decimal.NewFromInt(14),
		},
		{
			name:    "Parentheses override precedence",
			formula: "(2 + 3) * 4",
			vars:    vars(0, 0),
			want:    decimal.NewFromInt(20),
		},
		{
			name:    "Left associative subtraction and division",
			formula: "100 - 20 - 30 / 3 / 2",
			vars:    vars(0, 0),
			want:    decimal.NewFromInt(75),
		},
		{
			name:    "Unary minus",
			formula: "-(-5) + -1",
			vars:    vars(0, 0),
			want:    decimal.NewFromInt(4),
		},
		{
			name:    "Leading and trailing dot literals",
			formula: ".5 * 4 + 3.",
			vars:    vars(0, 0),
			want:    decimal.NewFromInt(5),
		},
		{
			name:    "Negative result is clamped to zero",
			formula: "balance - 2000",
			vars:    vars(1000, 0),
			want:    decimal.Zero,
		},
		{
			name:    "Fractional balance is substituted exactly",
			formula: "balance + 0.1",
			vars:    Variables{Balance: decimal.RequireFromString("0.2"), InterestRate: decimal.Zero},
			want:    decimal.RequireFromString("0.3"),
		},
		{
			name:    "Negative balance substitutes as a signed literal",
			formula: "10 - balance",
			vars:    vars(-5, 0),
			want:    decimal.NewFromInt(15),
		},
		{
			name:    "Negative balance next to a minus sign",
			formula: "10-balance",
			vars:    vars(-5, 0),
			want:    decimal.NewFromInt(15),
		},
		{
			name:    "Separated signs stack as unary operators",
			formula: "1 - -2 + 1 - +1",
			vars:    vars(0, 0),
			want:    decimal.NewFromInt(3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.formula, tt.vars)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestEvaluate_InvalidFormula(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		errMsg  string
	}{
		{name: "SQL injection attempt", formula: "balance; DROP TABLE", errMsg: "invalid characters"},
		{name: "Arbitrary identifiers", formula: "process.exit()", errMsg: "invalid characters"},
		{name: "Empty formula", formula: "", errMsg: "invalid characters"},
		{name: "Only spaces", formula: "   ", errMsg: "unexpected end"},
		{name: "Division by zero", formula: "balance / 0", errMsg: "finite"},
		{name: "Division by zero via variable", formula: "balance / interestRate", errMsg: "finite"},
		{name: "Exponent operator is not supported", formula: "2 ** 3", errMsg: "unexpected"},
		{name: "Adjacent numbers", formula: "1 2", errMsg: "unexpected"},
		{name: "Unbalanced parenthesis", formula: "(1 + 2", errMsg: "closing parenthesis"},
		{name: "Stray closing parenthesis", formula: "1 + 2)", errMsg: "unexpected"},
		{name: "Malformed number", formula: "1.2.3 + 1", errMsg: "malformed number"},
		{name: "Malformed number after operator", formula: "1 + 1.2.3", errMsg: "malformed number"},
		{name: "Dangling operator", formula: "balance *", errMsg: "unexpected end"},
		{name: "Decrement operator", formula: "1--2", errMsg: "unsupported operator \"--\""},
		{name: "Increment operator", formula: "balance ++ 1", errMsg: "unsupported operator \"++\""},
		{name: "Decrement inside parentheses", formula: "(2 --1) * 3", errMsg: "unsupported operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.formula, vars(1000, 0))
			assert.ErrorIs(t, err, domain.ErrInvalidFormula)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.True(t, got.IsZero())
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("balance * 0.02 + 50"))
	assert.NoError(t, Validate("balance * interestRate / 1200"))
	// Division by zero is only detectable once real values are known
	assert.NoError(t, Validate("balance / (interestRate - 1)"))

	assert.ErrorIs(t, Validate("balance *"), domain.ErrInvalidFormula)
	assert.ErrorIs(t, Validate("min(balance, 100)"), domain.ErrInvalidFormula)
}
