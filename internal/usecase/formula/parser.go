package formula

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// parser is a recursive-descent parser over the grammar
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | primary
//	primary = number | "(" expr ")"
type parser struct {
	src string
	pos int
	tok token
	err error
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at offset %d", domain.ErrInvalidFormula, fmt.Sprintf(format, args...), p.tok.pos)
}

// next advances to the following token. Lexing errors are reported as an EOF
// token with p.err set, which the parse functions check first.
func (p *parser) next() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.src[p.pos]
	switch {
	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case c == '+' || c == '-' || c == '*' || c == '/':
		// "++" and "--" read as increment/decrement, not as two signs
		if (c == '+' || c == '-') && p.pos+1 < len(p.src) && p.src[p.pos+1] == c {
			p.tok = token{kind: tokEOF, pos: start}
			p.err = fmt.Errorf("%w: unsupported operator %q at offset %d", domain.ErrInvalidFormula, p.src[start:start+2], start)
			return
		}
		p.pos++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	default:
		dots := 0
		digits := 0
		for p.pos < len(p.src) {
			d := p.src[p.pos]
			if d == '.' {
				dots++
			} else if d >= '0' && d <= '9' {
				digits++
			} else {
				break
			}
			p.pos++
		}
		text := p.src[start:p.pos]
		if dots > 1 || digits == 0 {
			p.tok = token{kind: tokEOF, pos: start}
			p.err = fmt.Errorf("%w: malformed number %q at offset %d", domain.ErrInvalidFormula, text, start)
			return
		}
		p.tok = token{kind: tokNumber, text: text, pos: start}
	}
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text[0]
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text[0]
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		neg := p.tok.text == "-"
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if neg {
			return negate{operand: operand}, nil
		}
		return operand, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.err != nil {
		return nil, p.err
	}

	switch p.tok.kind {
	case tokNumber:
		// A leading or trailing dot (".5", "5.") is accepted, as in most calculators
		text := p.tok.text
		if text[0] == '.' {
			text = "0" + text
		}
		if text[len(text)-1] == '.' {
			text = text[:len(text)-1]
		}
		v, err := decimal.NewFromString(text)
		if err != nil {
			return nil, p.errorf("malformed number %q", p.tok.text)
		}
		p.next()
		return number{value: v}, nil

	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.err != nil {
			return nil, p.err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("missing closing parenthesis")
		}
		p.next()
		return inner, nil

	case tokEOF:
		return nil, p.errorf("unexpected end of formula")
	}

	return nil, p.errorf("unexpected %q", p.tok.text)
}
