package testutil

import (
	"errors"
	"testing"

	"github.com/leengari/colcalc/internal/domain/data"
)

// AssertRowCount checks if the result has the expected number of rows
func AssertRowCount(t *testing.T, actual, expected int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected %d rows, got %d", context, expected, actual)
	}
}

// AssertColumnExists checks if a column exists in a row
func AssertColumnExists(t *testing.T, row data.Row, column, context string) {
	t.Helper()
	if _, exists := row.Get(column); !exists {
		t.Errorf("%s: expected column '%s' to exist", context, column)
	}
}

// AssertColumnNotExists checks if a column does not exist in a row
func AssertColumnNotExists(t *testing.T, row data.Row, column, context string) {
	t.Helper()
	if _, exists := row.Get(column); exists {
		t.Errorf("%s: did not expect column '%s' to exist", context, column)
	}
}

// AssertValue checks a cell value with ==
func AssertValue(t *testing.T, row data.Row, column string, expected interface{}, context string) {
	t.Helper()
	got, exists := row.Get(column)
	if !exists {
		t.Errorf("%s: column '%s' missing", context, column)
		return
	}
	if got != expected {
		t.Errorf("%s: expected %s=%v (%T), got %v (%T)", context, column, expected, expected, got, got)
	}
}

// AssertNoError checks that an error is nil
func AssertNoError(t *testing.T, err error, context string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: expected no error, got: %v", context, err)
	}
}

// AssertError checks that an error is not nil
func AssertError(t *testing.T, err error, context string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected an error, got nil", context)
	}
}

// AssertErrorIs checks that err wraps target
func AssertErrorIs(t *testing.T, err, target error, context string) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("%s: expected error %v, got: %v", context, target, err)
	}
}
