package postfix

import (
	domerr "github.com/leengari/colcalc/internal/domain/errors"
	"github.com/leengari/colcalc/internal/formula/token"
)

// Precedence returns the binding strength of op. Parentheses have no
// precedence; they only act as barriers on the operator stack.
func Precedence(op token.Op) int {
	switch op {
	case token.OpAdd, token.OpSub:
		return 1
	case token.OpMul, token.OpDiv:
		return 2
	case token.OpNeg:
		return 3
	default:
		return 0
	}
}

// Convert turns an infix sequence into Reverse Polish order using the
// shunting-yard algorithm. Operators of equal precedence are left
// associative. A '-' found where an operand is expected becomes OpNeg.
//
// seq should already have passed validator.Validate; structural problems that
// slip through are reported as *errors.SyntaxError.
func Convert(seq *token.Sequence) (token.Postfix, error) {
	out := make(token.Postfix, 0, seq.Len())
	stack := make([]token.Token, 0)
	expectingOperand := true

	for i, tok := range seq.Tokens() {
		switch tok.Kind {
		case token.KindColumn, token.KindNumber:
			out = append(out, tok)
			expectingOperand = false

		case token.KindParen:
			if tok.Paren == token.Open {
				stack = append(stack, tok)
				expectingOperand = true
				continue
			}
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.IsParen(token.Open) {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, domerr.NewSyntaxError(i, tok.String(), "unmatched closing parenthesis")
			}
			expectingOperand = false

		case token.KindOperator:
			if expectingOperand {
				if tok.Op != token.OpSub {
					return nil, domerr.NewSyntaxError(i, tok.String(), "operator not allowed here")
				}
				// prefix operator: nothing on the stack binds to it yet
				stack = append(stack, token.Operator(token.OpNeg))
				continue
			}
			prec := Precedence(tok.Op)
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Kind != token.KindOperator || Precedence(top.Op) < prec {
					break
				}
				out = append(out, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
			expectingOperand = true

		default:
			return nil, domerr.NewSyntaxError(i, tok.String(), "unknown token")
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.IsParen(token.Open) {
			return nil, domerr.NewSyntaxError(-1, "", "unmatched opening parenthesis")
		}
		out = append(out, top)
	}

	return out, nil
}
