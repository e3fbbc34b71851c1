package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Evaluation failures that carry no extra context
var (
	ErrDivisionByZero = stderrors.New("division by zero")

	// ErrNumericOverflow is returned when an intermediate or final value is
	// not a finite float64
	ErrNumericOverflow = stderrors.New("numeric overflow")

	// ErrMissingOperand and ErrIncompleteExpression mean the postfix form was
	// built from a sequence that should have failed validation.
	ErrMissingOperand       = stderrors.New("missing operand")
	ErrIncompleteExpression = stderrors.New("incomplete expression")
)

// Error categories reported next to failed rows
const (
	CategorySyntax               = "syntax"
	CategoryInvalidColumnValue   = "invalid_column_value"
	CategoryDivisionByZero       = "division_by_zero"
	CategoryNumericOverflow      = "numeric_overflow"
	CategoryMissingOperand       = "missing_operand"
	CategoryIncompleteExpression = "incomplete_expression"
	CategoryUnknown              = "unknown"
)

// SyntaxError describes a malformed token sequence
// (bad token order, unmatched parenthesis, dangling operator)
type SyntaxError struct {
	Position int    // index of the offending token (-1 for end of sequence)
	Token    string // rendered token, empty at end of sequence
	Reason   string // human-readable explanation
}

func (e *SyntaxError) Error() string {
	parts := []string{"syntax error"}

	if e.Position >= 0 {
		parts = append(parts, fmt.Sprintf("at token %d", e.Position))
	} else {
		parts = append(parts, "at end of formula")
	}

	if e.Token != "" {
		parts = append(parts, fmt.Sprintf("(%q)", e.Token))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

// NewSyntaxError creates a SyntaxError for the token at position
func NewSyntaxError(position int, token, reason string) *SyntaxError {
	return &SyntaxError{
		Position: position,
		Token:    token,
		Reason:   reason,
	}
}

// InvalidColumnValueError is returned when a referenced column is absent
// from a row or its value does not parse as a number
type InvalidColumnValueError struct {
	Column string
	Value  interface{} // nil when the column is absent
	Absent bool
}

func (e *InvalidColumnValueError) Error() string {
	if e.Absent {
		return fmt.Sprintf("invalid column value: column '%s' not found in row", e.Column)
	}
	return fmt.Sprintf("invalid column value: column '%s' has non-numeric value %v", e.Column, e.Value)
}

// NewMissingColumn reports a column absent from the row
func NewMissingColumn(column string) *InvalidColumnValueError {
	return &InvalidColumnValueError{Column: column, Absent: true}
}

// NewNonNumericValue reports a column whose value is not a number
func NewNonNumericValue(column string, value interface{}) *InvalidColumnValueError {
	return &InvalidColumnValueError{Column: column, Value: value}
}

// Category maps an error to its taxonomy name
func Category(err error) string {
	var syntaxErr *SyntaxError
	var columnErr *InvalidColumnValueError

	switch {
	case err == nil:
		return ""
	case stderrors.As(err, &syntaxErr):
		return CategorySyntax
	case stderrors.As(err, &columnErr):
		return CategoryInvalidColumnValue
	case stderrors.Is(err, ErrDivisionByZero):
		return CategoryDivisionByZero
	case stderrors.Is(err, ErrNumericOverflow):
		return CategoryNumericOverflow
	case stderrors.Is(err, ErrMissingOperand):
		return CategoryMissingOperand
	case stderrors.Is(err, ErrIncompleteExpression):
		return CategoryIncompleteExpression
	default:
		return CategoryUnknown
	}
}

// IsDefect reports whether err is an internal consistency failure rather than
// a problem with the row data
func IsDefect(err error) bool {
	return stderrors.Is(err, ErrMissingOperand) || stderrors.Is(err, ErrIncompleteExpression)
}
