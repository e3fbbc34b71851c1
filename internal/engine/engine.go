package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leengari/colcalc/internal/domain/data"
	domerr "github.com/leengari/colcalc/internal/domain/errors"
	"github.com/leengari/colcalc/internal/formula/lexer"
	"github.com/leengari/colcalc/internal/formula/postfix"
	"github.com/leengari/colcalc/internal/formula/token"
	"github.com/leengari/colcalc/internal/formula/validator"
	"github.com/leengari/colcalc/internal/projection"
)

// Formula is a validated formula ready to be applied to datasets.
// Postfix is computed once and reused for every row.
type Formula struct {
	ID      string
	Infix   string
	Postfix token.Postfix
	Columns []string // referenced columns
}

// RunResult is the outcome of applying a Formula to a dataset
type RunResult struct {
	BatchID string
	Dataset *data.Dataset // input rows plus the derived column
	Results []projection.Result
	Summary projection.Summary
	Message string
}

// Engine is the main entry point for formula evaluation
type Engine struct {
	opts      projection.Options
	logger    *slog.Logger
	observers []Observer // Observers for lifecycle events
}

// New creates a new Engine instance. Workers == 1 evaluates rows sequentially.
// A nil logger falls back to slog.Default().
func New(opts projection.Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ResultKey == "" {
		opts.ResultKey = projection.DefaultResultKey
	}
	if opts.FailureMarker == "" {
		opts.FailureMarker = projection.DefaultFailureMarker
	}
	return &Engine{
		opts:      opts,
		logger:    logger,
		observers: make([]Observer, 0),
	}
}

// ResultKey returns the column name derived values are written to
func (e *Engine) ResultKey() string {
	return e.opts.ResultKey
}

// Parse tokenizes formula text
func (e *Engine) Parse(text string) (*token.Sequence, error) {
	e.notify(Event{Type: EventLexStart, Data: text})
	seq, err := lexer.Tokenize(text)
	if err != nil {
		return nil, fmt.Errorf("lexer error: %w", err)
	}
	e.notify(Event{Type: EventLexEnd, Data: seq.Len()})
	return seq, nil
}

// CompileText parses and compiles formula text
func (e *Engine) CompileText(text string) (*Formula, error) {
	seq, err := e.Parse(text)
	if err != nil {
		return nil, err
	}
	return e.Compile(seq)
}

// Compile validates seq and converts it to postfix form
func (e *Engine) Compile(seq *token.Sequence) (*Formula, error) {
	id := uuid.New().String()

	// 1. Validate
	e.notify(Event{Type: EventValidateStart, FormulaID: id, Data: seq.String()})
	if err := validator.Check(seq); err != nil {
		e.notify(Event{Type: EventValidateEnd, FormulaID: id, Data: err.Error()})
		return nil, err
	}
	e.notify(Event{Type: EventValidateEnd, FormulaID: id, Data: validator.MessageValid})

	// 2. Convert
	e.notify(Event{Type: EventConvertStart, FormulaID: id})
	out, err := postfix.Convert(seq)
	if err != nil {
		return nil, fmt.Errorf("conversion error: %w", err)
	}
	e.notify(Event{Type: EventConvertEnd, FormulaID: id, Data: out.String()})

	return &Formula{
		ID:      id,
		Infix:   seq.String(),
		Postfix: out,
		Columns: seq.Columns(),
	}, nil
}

// Describe returns the aggregate message shown before computation:
// "Valid expression", "Invalid expression" or "Error: <message>"
func (e *Engine) Describe(seq *token.Sequence) string {
	if !validator.Validate(seq) {
		return validator.MessageInvalid
	}
	if _, err := postfix.Convert(seq); err != nil {
		return "Error: " + err.Error()
	}
	return validator.MessageValid
}

// Run applies f to every row of ds. Row failures are logged and recorded in
// the results; the returned error is only set when ctx is cancelled.
func (e *Engine) Run(ctx context.Context, f *Formula, ds *data.Dataset) (*RunResult, error) {
	batchID := uuid.New().String()
	log := e.logger.With("formula_id", f.ID, "batch_id", batchID)

	for _, col := range f.Columns {
		if !ds.HasColumn(col) {
			log.Warn("formula references unknown column", "column", col, "dataset", ds.Name)
		}
	}

	e.notify(Event{Type: EventProjectStart, FormulaID: f.ID, BatchID: batchID, Data: len(ds.Rows)})
	start := time.Now()

	var (
		results []projection.Result
		err     error
	)
	if e.opts.Workers == 1 {
		if err = ctx.Err(); err == nil {
			results = projection.Project(f.Postfix, ds.Rows, e.opts)
			err = ctx.Err()
		}
	} else {
		results, err = projection.ProjectParallel(ctx, f.Postfix, ds.Rows, e.opts)
	}
	if err != nil {
		return nil, fmt.Errorf("projection aborted: %w", err)
	}

	for _, r := range results {
		if r.OK() {
			continue
		}
		if domerr.IsDefect(r.Err) {
			log.Error("row evaluation defect", "row", r.Index, "category", domerr.Category(r.Err), "error", r.Err)
		} else {
			log.Warn("row evaluation failed", "row", r.Index, "category", domerr.Category(r.Err), "error", r.Err)
		}
	}

	summary := projection.Summarize(results)
	e.notify(Event{Type: EventProjectEnd, FormulaID: f.ID, BatchID: batchID, Data: map[string]interface{}{
		"rows_total":  summary.Total,
		"rows_failed": summary.Failed,
		"duration":    time.Since(start).String(),
	}})

	out := data.NewDataset(ds.Name, append([]string(nil), ds.Columns...))
	out.AddColumn(e.opts.ResultKey)
	out.Rows = projection.Rows(results)

	return &RunResult{
		BatchID: batchID,
		Dataset: out,
		Results: results,
		Summary: summary,
		Message: fmt.Sprintf("Computed %d rows (%d failed)", summary.Total, summary.Failed),
	}, nil
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	event.Timestamp = time.Now()
	for _, observer := range e.observers {
		observer.OnEvent(event)
	}
}
