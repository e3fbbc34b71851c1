package validator

import (
	domerr "github.com/leengari/colcalc/internal/domain/errors"
	"github.com/leengari/colcalc/internal/formula/token"
)

// User-facing validity messages
const (
	MessageValid   = "Valid expression"
	MessageInvalid = "Invalid expression"
)

// Validate reports whether seq is a well-formed arithmetic expression
func Validate(seq *token.Sequence) bool {
	return Check(seq) == nil
}

// Message returns the aggregate validity message for seq
func Message(seq *token.Sequence) string {
	if Validate(seq) {
		return MessageValid
	}
	return MessageInvalid
}

// Check scans seq left to right and returns the first violation as a
// *errors.SyntaxError, or nil when the sequence is well formed.
//
// An operand slot accepts a column, a number, an opening parenthesis or a
// unary minus. Everything else is only legal after a complete operand.
func Check(seq *token.Sequence) error {
	expectingOperand := true
	openParens := 0

	for i, tok := range seq.Tokens() {
		switch tok.Kind {
		case token.KindColumn:
			if tok.Column == "" {
				return domerr.NewSyntaxError(i, "", "empty column name")
			}
			if !expectingOperand {
				return domerr.NewSyntaxError(i, tok.String(), "missing operator between operands")
			}
			expectingOperand = false

		case token.KindNumber:
			if !expectingOperand {
				return domerr.NewSyntaxError(i, tok.String(), "missing operator between operands")
			}
			expectingOperand = false

		case token.KindOperator:
			if expectingOperand {
				// unary minus: start of formula, after an operator or after '('
				if tok.Op == token.OpSub {
					continue
				}
				return domerr.NewSyntaxError(i, tok.String(), "operator not allowed here")
			}
			if tok.Op == token.OpNeg {
				return domerr.NewSyntaxError(i, tok.String(), "operator not allowed here")
			}
			expectingOperand = true

		case token.KindParen:
			if tok.Paren == token.Open {
				if !expectingOperand {
					return domerr.NewSyntaxError(i, tok.String(), "missing operator before parenthesis")
				}
				openParens++
				expectingOperand = true
				continue
			}
			openParens--
			if openParens < 0 {
				return domerr.NewSyntaxError(i, tok.String(), "unmatched closing parenthesis")
			}
			if expectingOperand {
				return domerr.NewSyntaxError(i, tok.String(), "empty group or dangling operator")
			}
			expectingOperand = false

		default:
			return domerr.NewSyntaxError(i, tok.String(), "unknown token")
		}
	}

	if openParens != 0 {
		return domerr.NewSyntaxError(-1, "", "unmatched opening parenthesis")
	}
	if expectingOperand {
		if seq.Len() == 0 {
			return domerr.NewSyntaxError(-1, "", "empty formula")
		}
		return domerr.NewSyntaxError(-1, "", "formula ends while expecting an operand")
	}
	return nil
}
