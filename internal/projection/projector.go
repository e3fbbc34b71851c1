package projection

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/leengari/colcalc/internal/domain/data"
	domerr "github.com/leengari/colcalc/internal/domain/errors"
	"github.com/leengari/colcalc/internal/formula/evaluator"
	"github.com/leengari/colcalc/internal/formula/token"
)

const (
	// DefaultResultKey is the column the derived value is written to
	DefaultResultKey = "result"
	// DefaultFailureMarker is written instead of a value when a row fails
	DefaultFailureMarker = "Error"
)

// Options controls where results go and how many rows run at once
type Options struct {
	ResultKey     string
	FailureMarker string
	Workers       int // ProjectParallel only; <= 0 means GOMAXPROCS
}

func (o Options) withDefaults() Options {
	if o.ResultKey == "" {
		o.ResultKey = DefaultResultKey
	}
	if o.FailureMarker == "" {
		o.FailureMarker = DefaultFailureMarker
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Result is the outcome for one input row
type Result struct {
	Index int      // position of the row in the input
	Row   data.Row // copy of the input row with the result key appended
	Value float64  // valid only when Err is nil
	Err   error
}

// OK reports whether the row produced a value
func (r Result) OK() bool {
	return r.Err == nil
}

// Project evaluates postfix for every row, in input order.
// A failing row is recorded in its Result and does not stop the batch.
func Project(postfix token.Postfix, rows []data.Row, opts Options) []Result {
	opts = opts.withDefaults()
	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = projectRow(postfix, row, i, opts)
	}
	return results
}

// ProjectParallel is Project with rows spread over opts.Workers goroutines.
// Output order matches input order. When ctx is cancelled, no further rows
// are started and ctx.Err() is returned with the partial results.
func ProjectParallel(ctx context.Context, postfix token.Postfix, rows []data.Row, opts Options) ([]Result, error) {
	opts = opts.withDefaults()
	results := make([]Result, len(rows))

	// gctx is cancelled once Wait returns; the caller's ctx decides the outcome
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, row := range rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// each goroutine writes only its own slot
			results[i] = projectRow(postfix, row, i, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func projectRow(postfix token.Postfix, row data.Row, index int, opts Options) Result {
	out := row.Copy()
	value, err := evaluator.Evaluate(postfix, row)
	if err != nil {
		out.Set(opts.ResultKey, opts.FailureMarker)
		return Result{Index: index, Row: out, Err: err}
	}
	out.Set(opts.ResultKey, value)
	return Result{Index: index, Row: out, Value: value}
}

// Summary counts outcomes of a projection
type Summary struct {
	Total      int
	Succeeded  int
	Failed     int
	ByCategory map[string]int // failure category -> count
}

// Summarize builds a Summary from results
func Summarize(results []Result) Summary {
	s := Summary{
		Total:      len(results),
		ByCategory: make(map[string]int),
	}
	for _, r := range results {
		if r.OK() {
			s.Succeeded++
			continue
		}
		s.Failed++
		s.ByCategory[domerr.Category(r.Err)]++
	}
	return s
}

// Rows extracts the output rows of results
func Rows(results []Result) []data.Row {
	rows := make([]data.Row, len(results))
	for i, r := range results {
		rows[i] = r.Row
	}
	return rows
}
