package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"

	"github.com/leengari/colcalc/internal/domain/data"
	"github.com/leengari/colcalc/internal/engine"
	"github.com/leengari/colcalc/internal/formula/token"
	"github.com/leengari/colcalc/internal/storage"
)

// MaxCellWidth is the display width cells are truncated to
const MaxCellWidth = 24

const help = `Commands:
  load <file>        import a csv/txt/json/xml/xlsx/xls dataset
  columns            list dataset columns
  col <name>         append a column reference
  op <+|-|*|/>       append an operator
  num <value>        append a numeric literal
  open | close       append a parenthesis
  remove <index>     remove the token at index
  clear              discard the formula
  formula <text>     replace the formula with parsed text
  show               print the formula and its validity
  run                compute the derived column
  save <file>        write the last result as csv/json
  exit | \q          quit`

// Session holds the formula being built and the loaded dataset
type Session struct {
	eng     *engine.Engine
	storage storage.Options
	seq     *token.Sequence
	dataset *data.Dataset
	last    *engine.RunResult
	out     io.Writer
}

// NewSession creates a session writing to out
func NewSession(eng *engine.Engine, storageOpts storage.Options, out io.Writer) *Session {
	return &Session{
		eng:     eng,
		storage: storageOpts,
		seq:     token.NewSequence(),
		out:     out,
	}
}

// SetDataset replaces the loaded dataset
func (s *Session) SetDataset(ds *data.Dataset) {
	s.dataset = ds
	s.last = nil
}

// Start reads commands from in until EOF or exit
func Start(ctx context.Context, s *Session, in io.Reader) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(s.out, "Welcome to colcalc")
	fmt.Fprintln(s.out, "Type 'help' for commands, 'exit' or '\\q' to quit.")

	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if line == "exit" || line == "\\q" {
			break
		}

		if err := s.Execute(ctx, line); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

// Execute runs a single command line
func (s *Session) Execute(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "help":
		fmt.Fprintln(s.out, help)

	case "load":
		if arg == "" {
			return fmt.Errorf("usage: load <file>")
		}
		ds, err := storage.Load(arg, s.storage, slog.Default())
		if err != nil {
			return err
		}
		s.SetDataset(ds)
		fmt.Fprintf(s.out, "Loaded %d rows, %d columns\n", len(ds.Rows), len(ds.Columns))

	case "columns":
		if s.dataset == nil {
			return fmt.Errorf("no dataset loaded")
		}
		for _, c := range s.dataset.Columns {
			fmt.Fprintf(s.out, "  - %s\n", c)
		}

	case "col":
		if arg == "" {
			return fmt.Errorf("usage: col <name>")
		}
		if s.dataset != nil && !s.dataset.HasColumn(arg) {
			return fmt.Errorf("unknown column %q", arg)
		}
		s.seq.Append(token.Column(arg))
		s.show()

	case "op":
		tok, err := token.OperatorFromSymbol(arg)
		if err != nil {
			return err
		}
		s.seq.Append(tok)
		s.show()

	case "num":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", arg)
		}
		s.seq.Append(token.Number(v))
		s.show()

	case "open", "(":
		s.seq.Append(token.OpenParen())
		s.show()

	case "close", ")":
		s.seq.Append(token.CloseParen())
		s.show()

	case "remove":
		i, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("usage: remove <index>")
		}
		if err := s.seq.RemoveAt(i); err != nil {
			return err
		}
		s.show()

	case "clear":
		s.seq.Clear()
		fmt.Fprintln(s.out, "Formula cleared")

	case "formula":
		seq, err := s.eng.Parse(arg)
		if err != nil {
			return err
		}
		s.seq = seq
		s.show()

	case "show":
		s.show()

	case "run":
		return s.run(ctx)

	case "save":
		if s.last == nil {
			return fmt.Errorf("nothing to save, use 'run' first")
		}
		if arg == "" {
			return fmt.Errorf("usage: save <file>")
		}
		if err := storage.Save(arg, s.last.Dataset); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Saved %d rows to %s\n", len(s.last.Dataset.Rows), arg)

	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
	return nil
}

func (s *Session) show() {
	var b strings.Builder
	for i, tok := range s.seq.Tokens() {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "[%d]%s", i, tok)
	}
	fmt.Fprintf(s.out, "%s\n%s\n", b.String(), s.eng.Describe(s.seq))
}

func (s *Session) run(ctx context.Context) error {
	if s.dataset == nil {
		return fmt.Errorf("no dataset loaded")
	}
	f, err := s.eng.Compile(s.seq)
	if err != nil {
		return err
	}
	res, err := s.eng.Run(ctx, f, s.dataset)
	if err != nil {
		return err
	}
	s.last = res

	fmt.Fprintf(s.out, "%s = %s\n", s.eng.ResultKey(), f.Infix)
	PrintDataset(s.out, res.Dataset)
	fmt.Fprintln(s.out, res.Message)
	return nil
}

// PrintDataset writes ds as an aligned table
func PrintDataset(w io.Writer, ds *data.Dataset) {
	if len(ds.Columns) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Header
	fmt.Fprintln(tw, strings.Join(truncateAll(ds.Columns), "\t"))

	// Separator
	sep := make([]string, len(ds.Columns))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	// Rows
	cells := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			val, ok := row.Get(col)
			if !ok {
				cells[i] = "NULL"
			} else {
				cells[i] = truncate(storage.FormatValue(val))
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func truncateAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = truncate(v)
	}
	return out
}

func truncate(s string) string {
	return runewidth.Truncate(s, MaxCellWidth, "…")
}
