package formula

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
)

type node interface {
	eval() (decimal.Decimal, error)
}

type number struct {
	value decimal.Decimal
}

func (n number) eval() (decimal.Decimal, error) { return n.value, nil }

type negate struct {
	operand node
}

func (n negate) eval() (decimal.Decimal, error) {
	v, err := n.operand.eval()
	if err != nil {
		return decimal.Zero, err
	}
	return v.Neg(), nil
}

type binary struct {
	op          byte
	left, right node
}

func (b binary) eval() (decimal.Decimal, error) {
	l, err := b.left.eval()
	if err != nil {
		return decimal.Zero, err
	}
	r, err := b.right.eval()
	if err != nil {
		return decimal.Zero, err
	}

	switch b.op {
	case '+':
		return l.Add(r), nil
	case '-':
		return l.Sub(r), nil
	case '*':
		return l.Mul(r), nil
	case '/':
		// x/0 has no finite value
		if r.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: formula did not evaluate to a finite number", domain.ErrInvalidFormula)
		}
		return l.Div(r), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unknown operator %q", domain.ErrInvalidFormula, b.op)
}
