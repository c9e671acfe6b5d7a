// Package formula evaluates the small arithmetic expressions used by recurring
// payment rules, e.g. "balance * 0.02 + 50".
//
// Only the variables balance and interestRate are recognised. After they are
// substituted, the expression may contain nothing but digits, + - * / ( ) . and
// spaces. Anything else is rejected with domain.ErrInvalidFormula.
package formula

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
)

const (
	VarBalance      = "balance"
	VarInterestRate = "interestRate"
)

var allowedChars = regexp.MustCompile(`^[0-9+\-*/(). ]+$`)

// Variables holds the values a formula may reference
type Variables struct {
	Balance      decimal.Decimal
	InterestRate decimal.Decimal
}

// Evaluate substitutes the variables into expression, evaluates it with the usual
// operator precedence and returns the result clamped to a minimum of zero.
func Evaluate(expression string, vars Variables) (decimal.Decimal, error) {
	root, err := compile(substitute(expression, vars))
	if err != nil {
		return decimal.Zero, err
	}

	result, err := root.eval()
	if err != nil {
		return decimal.Zero, err
	}

	// A computed payment can never be negative
	return decimal.Max(decimal.Zero, result), nil
}

// Validate checks that expression is well formed without evaluating it.
// Division by zero can still surface later, once real values are substituted.
func Validate(expression string) error {
	_, err := compile(substitute(expression, Variables{Balance: decimal.NewFromInt(1), InterestRate: decimal.NewFromInt(1)}))
	return err
}

// substitute replaces each variable name (literal text match) with its decimal rendering.
// Negative values are parenthesised so "10-balance" never lexes as "10--5".
func substitute(expression string, vars Variables) string {
	out := strings.ReplaceAll(expression, VarBalance, literal(vars.Balance))
	return strings.ReplaceAll(out, VarInterestRate, literal(vars.InterestRate))
}

func literal(v decimal.Decimal) string {
	if v.IsNegative() {
		return "(" + v.String() + ")"
	}
	return v.String()
}

func compile(sanitized string) (node, error) {
	if !allowedChars.MatchString(sanitized) {
		return nil, fmt.Errorf("%w: formula contains invalid characters", domain.ErrInvalidFormula)
	}

	p := &parser{src: sanitized}
	p.next()

	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return root, nil
}
