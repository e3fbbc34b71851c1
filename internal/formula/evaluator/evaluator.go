package evaluator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leengari/colcalc/internal/domain/data"
	domerr "github.com/leengari/colcalc/internal/domain/errors"
	"github.com/leengari/colcalc/internal/formula/token"
)

// Evaluate computes postfix against the column values of row.
// Every intermediate value must stay finite; overflow fails the row.
// The value stack is local to the call, so concurrent calls on the same
// postfix are safe.
func Evaluate(postfix token.Postfix, row data.Row) (float64, error) {
	stack := make([]float64, 0, len(postfix))

	for _, tok := range postfix {
		switch tok.Kind {
		case token.KindNumber:
			stack = append(stack, tok.Value)

		case token.KindColumn:
			v, err := ResolveColumn(row, tok.Column)
			if err != nil {
				return 0, err
			}
			stack = append(stack, v)

		case token.KindOperator:
			if tok.Op == token.OpNeg {
				if len(stack) < 1 {
					return 0, fmt.Errorf("applying %s: %w", tok.Op, domerr.ErrMissingOperand)
				}
				stack[len(stack)-1] = -stack[len(stack)-1]
				continue
			}
			if len(stack) < 2 {
				return 0, fmt.Errorf("applying %s: %w", tok.Op, domerr.ErrMissingOperand)
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			v, err := apply(tok.Op, a, b)
			if err != nil {
				return 0, err
			}
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return 0, fmt.Errorf("%g %s %g: %w", a, tok.Op, b, domerr.ErrNumericOverflow)
			}
			stack = append(stack, v)

		default:
			return 0, fmt.Errorf("unexpected %s token in postfix form: %w", tok.Kind, domerr.ErrIncompleteExpression)
		}
	}

	if len(stack) != 1 {
		return 0, fmt.Errorf("%d values left on stack: %w", len(stack), domerr.ErrIncompleteExpression)
	}
	return stack[0], nil
}

func apply(op token.Op, a, b float64) (float64, error) {
	switch op {
	case token.OpAdd:
		return a + b, nil
	case token.OpSub:
		return a - b, nil
	case token.OpMul:
		return a * b, nil
	case token.OpDiv:
		if b == 0 {
			return 0, domerr.ErrDivisionByZero
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("unknown operator %s: %w", op, domerr.ErrIncompleteExpression)
	}
}

// ResolveColumn looks up column in row and converts it to a float64
func ResolveColumn(row data.Row, column string) (float64, error) {
	raw, exists := row.Get(column)
	if !exists {
		return 0, domerr.NewMissingColumn(column)
	}
	v, ok := ToFloat(raw)
	if !ok {
		return 0, domerr.NewNonNumericValue(column, raw)
	}
	return v, nil
}

// ToFloat converts a raw cell value to a finite float64.
// Strings are trimmed and parsed; booleans, nil, NaN and infinities are rejected.
func ToFloat(raw interface{}) (float64, bool) {
	var v float64

	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int8:
		v = float64(n)
	case int16:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint8:
		v = float64(n)
	case uint16:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
