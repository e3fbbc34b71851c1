package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domerr "github.com/leengari/colcalc/internal/domain/errors"
	"github.com/leengari/colcalc/internal/formula/token"
	"github.com/leengari/colcalc/internal/formula/validator"
	"github.com/leengari/colcalc/internal/projection"
	"github.com/leengari/colcalc/internal/testutil"
)

func TestCompileScenarios(t *testing.T) {
	a, b, c := token.Column("a"), token.Column("b"), token.Column("c")
	plus, times := token.Operator(token.OpAdd), token.Operator(token.OpMul)

	tests := []struct {
		name    string
		seq     *token.Sequence
		postfix string
	}{
		{"precedence", token.NewSequence(a, plus, b, times, c), "a b c * +"},
		{"grouped", token.NewSequence(token.OpenParen(), a, plus, b, token.CloseParen(), times, c), "a b + c *"},
	}

	eng := New(projection.Options{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := eng.Compile(tt.seq)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			if f.Postfix.String() != tt.postfix {
				t.Errorf("expected postfix %q, got %q", tt.postfix, f.Postfix.String())
			}
			if f.ID == "" {
				t.Error("expected formula ID")
			}
		})
	}
}

func TestCompileRejectsInvalid(t *testing.T) {
	eng := New(projection.Options{}, nil)
	observer := &MockObserver{}
	eng.AddObserver(observer)

	seq := token.NewSequence(token.Column("a"), token.Operator(token.OpAdd), token.Operator(token.OpAdd))
	f, err := eng.Compile(seq)
	if f != nil {
		t.Error("expected no formula for invalid sequence")
	}
	var syntaxErr *domerr.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}

	// evaluation never starts on an invalid sequence
	for _, typ := range observer.types() {
		if typ == EventConvertStart || typ == EventProjectStart {
			t.Errorf("unexpected %s event after failed validation", typ)
		}
	}
}

func TestDescribe(t *testing.T) {
	eng := New(projection.Options{}, nil)

	valid := token.NewSequence(token.Column("a"), token.Operator(token.OpDiv), token.Column("b"))
	if msg := eng.Describe(valid); msg != validator.MessageValid {
		t.Errorf("expected %q, got %q", validator.MessageValid, msg)
	}

	invalid := token.NewSequence(token.Column("a"), token.Column("b"))
	if msg := eng.Describe(invalid); msg != validator.MessageInvalid {
		t.Errorf("expected %q, got %q", validator.MessageInvalid, msg)
	}
}

func TestRun(t *testing.T) {
	for _, workers := range []int{1, 4} {
		eng := New(projection.Options{Workers: workers, ResultKey: "total"}, nil)
		observer := &MockObserver{}
		eng.AddObserver(observer)

		f, err := eng.CompileText("price * qty - discount")
		testutil.AssertNoError(t, err, "compile")

		ds := testutil.CreateSalesDataset()
		res, err := eng.Run(context.Background(), f, ds)
		testutil.AssertNoError(t, err, "run")

		if res.BatchID == "" {
			t.Error("expected batch ID")
		}
		if res.Summary.Total != 4 || res.Summary.Failed != 1 {
			t.Errorf("workers=%d: unexpected summary %+v", workers, res.Summary)
		}
		if !res.Dataset.HasColumn("total") {
			t.Errorf("workers=%d: derived column missing from header %v", workers, res.Dataset.Columns)
		}
		if ds.HasColumn("total") {
			t.Error("input dataset header must not change")
		}
		testutil.AssertValue(t, res.Dataset.Rows[0], "total", 14.0, "pen")
		testutil.AssertValue(t, res.Dataset.Rows[1], "total", 24.0, "book")
		testutil.AssertValue(t, res.Dataset.Rows[2], "total", -5.0, "bag")
		testutil.AssertValue(t, res.Dataset.Rows[3], "total", projection.DefaultFailureMarker, "ink")

		types := observer.types()
		expected := []EventType{
			EventLexStart, EventLexEnd,
			EventValidateStart, EventValidateEnd,
			EventConvertStart, EventConvertEnd,
			EventProjectStart, EventProjectEnd,
		}
		if len(types) != len(expected) {
			t.Fatalf("expected events %v, got %v", expected, types)
		}
		for i := range expected {
			if types[i] != expected[i] {
				t.Errorf("event %d: expected %s, got %s", i, expected[i], types[i])
			}
		}
	}
}

func TestRunCancelled(t *testing.T) {
	for _, workers := range []int{1, 2} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			eng := New(projection.Options{Workers: workers}, nil)
			f, err := eng.CompileText("qty")
			testutil.AssertNoError(t, err, "compile")

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := eng.Run(ctx, f, testutil.CreateSalesDataset())
			testutil.AssertErrorIs(t, err, context.Canceled, "cancelled run")
			if res != nil {
				t.Errorf("expected no result for a cancelled run, got %+v", res)
			}
		})
	}
}

func TestCompileTextLexerError(t *testing.T) {
	eng := New(projection.Options{}, nil)
	if _, err := eng.CompileText("a $ b"); err == nil {
		t.Error("expected lexer error")
	}
}
