package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant a Token holds
type Kind int

const (
	KindColumn Kind = iota
	KindOperator
	KindParen
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindColumn:
		return "COLUMN"
	case KindOperator:
		return "OPERATOR"
	case KindParen:
		return "PAREN"
	case KindNumber:
		return "NUMBER"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Op is an arithmetic operator
type Op int

const (
	OpAdd Op = iota // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /

	// OpNeg is unary minus. Only the postfix converter emits it.
	OpNeg
)

var opSymbols = map[Op]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpNeg: "neg",
}

var symbolOps = map[string]Op{
	"+": OpAdd,
	"-": OpSub,
	"*": OpMul,
	"/": OpDiv,
}

func (o Op) String() string {
	if s, ok := opSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Paren is the side of a parenthesis
type Paren int

const (
	Open Paren = iota
	Close
)

func (p Paren) String() string {
	if p == Open {
		return "("
	}
	return ")"
}

// Token is one element of a formula. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Token struct {
	Kind   Kind
	Column string  // KindColumn
	Op     Op      // KindOperator
	Paren  Paren   // KindParen
	Value  float64 // KindNumber
}

// Column creates a column reference token
func Column(name string) Token {
	return Token{Kind: KindColumn, Column: name}
}

// Operator creates an operator token
func Operator(op Op) Token {
	return Token{Kind: KindOperator, Op: op}
}

// OperatorFromSymbol creates an operator token from one of + - * /
func OperatorFromSymbol(symbol string) (Token, error) {
	op, ok := symbolOps[strings.TrimSpace(symbol)]
	if !ok {
		return Token{}, fmt.Errorf("unknown operator %q", symbol)
	}
	return Operator(op), nil
}

// OpenParen creates an opening parenthesis token
func OpenParen() Token {
	return Token{Kind: KindParen, Paren: Open}
}

// CloseParen creates a closing parenthesis token
func CloseParen() Token {
	return Token{Kind: KindParen, Paren: Close}
}

// Number creates a numeric literal token
func Number(v float64) Token {
	return Token{Kind: KindNumber, Value: v}
}

// IsOperand reports whether the token stands for a value
func (t Token) IsOperand() bool {
	return t.Kind == KindColumn || t.Kind == KindNumber
}

// IsOp reports whether the token is the given operator
func (t Token) IsOp(op Op) bool {
	return t.Kind == KindOperator && t.Op == op
}

// IsParen reports whether the token is the given parenthesis
func (t Token) IsParen(p Paren) bool {
	return t.Kind == KindParen && t.Paren == p
}

func (t Token) String() string {
	switch t.Kind {
	case KindColumn:
		return t.Column
	case KindOperator:
		return t.Op.String()
	case KindParen:
		return t.Paren.String()
	case KindNumber:
		return strconv.FormatFloat(t.Value, 'g', -1, 64)
	default:
		return "?"
	}
}
