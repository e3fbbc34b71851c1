package projection_test

import (
	"context"
	"errors"
	"testing"

	"github.com/leengari/colcalc/internal/domain/data"
	domerr "github.com/leengari/colcalc/internal/domain/errors"
	"github.com/leengari/colcalc/internal/formula/lexer"
	"github.com/leengari/colcalc/internal/formula/postfix"
	"github.com/leengari/colcalc/internal/formula/token"
	"github.com/leengari/colcalc/internal/projection"
	"github.com/leengari/colcalc/internal/testutil"
)

func compile(t *testing.T, input string) token.Postfix {
	t.Helper()
	seq, err := lexer.Tokenize(input)
	if err != nil {
		t.Fatalf("tokenize %q: %v", input, err)
	}
	out, err := postfix.Convert(seq)
	if err != nil {
		t.Fatalf("convert %q: %v", input, err)
	}
	return out
}

// TestProject_AppendsResult tests that each row gets the derived value
func TestProject_AppendsResult(t *testing.T) {
	rows := testutil.CreateNumericRows(3)

	results := projection.Project(compile(t, "a + b * c"), rows, projection.Options{})

	testutil.AssertRowCount(t, len(results), 3, "a + b * c")
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		expected := float64(i) + float64(i+1)*2
		testutil.AssertNoError(t, r.Err, "numeric row")
		testutil.AssertValue(t, r.Row, projection.DefaultResultKey, expected, "numeric row")
	}

	// input rows are not mutated
	testutil.AssertColumnNotExists(t, rows[0], projection.DefaultResultKey, "input row")
}

// TestProject_PerRowIsolation tests that failures stay on their own row
func TestProject_PerRowIsolation(t *testing.T) {
	ds := testutil.CreateSalesDataset()

	results := projection.Project(compile(t, "price * qty / qty"), ds.Rows, projection.Options{})

	testutil.AssertRowCount(t, len(results), 4, "sales")

	testutil.AssertNoError(t, results[0].Err, "pen")
	testutil.AssertValue(t, results[0].Row, "result", 1.5, "pen")

	testutil.AssertNoError(t, results[1].Err, "book")
	testutil.AssertValue(t, results[1].Row, "result", 12.0, "book")

	testutil.AssertErrorIs(t, results[2].Err, domerr.ErrDivisionByZero, "bag")
	testutil.AssertValue(t, results[2].Row, "result", projection.DefaultFailureMarker, "bag")

	var colErr *domerr.InvalidColumnValueError
	if !errors.As(results[3].Err, &colErr) || colErr.Column != "price" {
		t.Errorf("ink: expected invalid price, got %v", results[3].Err)
	}
	testutil.AssertValue(t, results[3].Row, "result", projection.DefaultFailureMarker, "ink")
}

// TestProject_CustomKeys tests configurable result key and failure marker
func TestProject_CustomKeys(t *testing.T) {
	rows := []data.Row{
		data.NewRow(map[string]interface{}{"a": 4.0, "b": 2.0}),
		data.NewRow(map[string]interface{}{"a": 4.0, "b": 0.0}),
	}
	opts := projection.Options{ResultKey: "ratio", FailureMarker: "#DIV/0"}

	results := projection.Project(compile(t, "a / b"), rows, opts)

	testutil.AssertValue(t, results[0].Row, "ratio", 2.0, "ok row")
	testutil.AssertValue(t, results[1].Row, "ratio", "#DIV/0", "failed row")
	testutil.AssertColumnNotExists(t, results[0].Row, "result", "ok row")
}

// TestProject_Idempotent tests that re-running gives identical output
func TestProject_Idempotent(t *testing.T) {
	ds := testutil.CreateSalesDataset()
	p := compile(t, "price * qty - discount")

	first := projection.Project(p, ds.Rows, projection.Options{})
	second := projection.Project(p, ds.Rows, projection.Options{})

	for i := range first {
		if first[i].Value != second[i].Value || (first[i].Err == nil) != (second[i].Err == nil) {
			t.Errorf("row %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
		if first[i].Err != nil && first[i].Err.Error() != second[i].Err.Error() {
			t.Errorf("row %d error differs: %v vs %v", i, first[i].Err, second[i].Err)
		}
	}
}

// TestProject_Empty tests an empty dataset
func TestProject_Empty(t *testing.T) {
	results := projection.Project(compile(t, "a"), nil, projection.Options{})
	testutil.AssertRowCount(t, len(results), 0, "empty dataset")
}

// TestProjectParallel_MatchesSequential tests ordering and values under concurrency
func TestProjectParallel_MatchesSequential(t *testing.T) {
	rows := testutil.CreateNumericRows(500)
	// every 7th row divides by zero
	for i := 0; i < len(rows); i += 7 {
		rows[i].Set("c", 0.0)
	}
	p := compile(t, "(a + b) / c")

	sequential := projection.Project(p, rows, projection.Options{})
	parallel, err := projection.ProjectParallel(context.Background(), p, rows, projection.Options{Workers: 8})
	testutil.AssertNoError(t, err, "parallel projection")

	testutil.AssertRowCount(t, len(parallel), len(sequential), "parallel")
	for i := range sequential {
		if parallel[i].Index != i {
			t.Fatalf("result %d out of order (index %d)", i, parallel[i].Index)
		}
		if parallel[i].Value != sequential[i].Value || parallel[i].OK() != sequential[i].OK() {
			t.Errorf("row %d: parallel %+v, sequential %+v", i, parallel[i], sequential[i])
		}
	}
}

// TestProjectParallel_Cancelled tests that a cancelled context is reported
func TestProjectParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := projection.ProjectParallel(ctx, compile(t, "a"), testutil.CreateNumericRows(10), projection.Options{Workers: 2})
	testutil.AssertErrorIs(t, err, context.Canceled, "cancelled projection")
}

// TestSummarize tests outcome counting by category
func TestSummarize(t *testing.T) {
	ds := testutil.CreateSalesDataset()
	results := projection.Project(compile(t, "price / qty"), ds.Rows, projection.Options{})

	s := projection.Summarize(results)
	if s.Total != 4 || s.Succeeded != 2 || s.Failed != 2 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.ByCategory[domerr.CategoryDivisionByZero] != 1 || s.ByCategory[domerr.CategoryInvalidColumnValue] != 1 {
		t.Errorf("unexpected categories: %v", s.ByCategory)
	}

	out := projection.Rows(results)
	testutil.AssertRowCount(t, len(out), 4, "Rows")
	testutil.AssertColumnExists(t, out[0], "result", "Rows")
}
