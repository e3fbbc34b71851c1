package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"slices"

	"github.com/leengari/colcalc/internal/domain/data"
	domerr "github.com/leengari/colcalc/internal/domain/errors"
	"github.com/leengari/colcalc/internal/engine"
	"github.com/leengari/colcalc/internal/formula/token"
)

// Request is one formula evaluation. Either Formula or Tokens is set.
type Request struct {
	Formula string     `json:"formula,omitempty"`
	Tokens  []TokenDTO `json:"tokens,omitempty"`
	Rows    []data.Row `json:"rows"`
}

// TokenDTO is the wire form of a token.
// Type is one of column, operator, paren or number.
type TokenDTO struct {
	Type   string  `json:"type"`
	Value  string  `json:"value,omitempty"`
	Number float64 `json:"number,omitempty"`
}

// Response carries the aggregate message and one result per request row
type Response struct {
	Valid   bool        `json:"valid"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Postfix string      `json:"postfix,omitempty"`
	Results []RowResult `json:"results,omitempty"`
}

// RowResult is the outcome for a single row. Value is nil on failure.
type RowResult struct {
	Index    int      `json:"index"`
	Value    *float64 `json:"value,omitempty"`
	Error    string   `json:"error,omitempty"`
	Category string   `json:"category,omitempty"`
}

// Start starts the TCP formula server
func Start(port int, eng *engine.Engine) {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		slog.Error("Failed to bind to port", "port", port, "error", err)
		return
	}
	defer listener.Close()

	slog.Info("Running on port", "port", port)

	if err := Serve(listener, eng); err != nil {
		slog.Error("Server stopped", "error", err)
	}
}

// Serve accepts connections on listener until it is closed
func Serve(listener net.Listener, eng *engine.Engine) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("Failed to accept connection", "error", err)
			continue
		}
		go handleConnection(conn, eng)
	}
}

func handleConnection(conn net.Conn, eng *engine.Engine) {
	defer conn.Close()

	// Use Decoder instead of Scanner for network streams
	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req Request
		if err := decoder.Decode(&req); err != nil {
			if err == io.EOF {
				return // Connection closed gracefully
			}
			slog.Error("decode error", "error", err)

			_ = encoder.Encode(&Response{
				Message: "Invalid request",
				Error:   fmt.Sprintf("Invalid request format: %v", err),
			})
			return
		}

		if req.Formula == "exit" || req.Formula == "\\q" {
			return
		}

		if err := encoder.Encode(handle(context.Background(), eng, &req)); err != nil {
			slog.Error("encode error", "error", err)
			return
		}
	}
}

func handle(ctx context.Context, eng *engine.Engine, req *Request) *Response {
	seq, err := requestSequence(eng, req)
	if err != nil {
		return &Response{Message: "Invalid request", Error: err.Error()}
	}

	resp := &Response{Message: eng.Describe(seq)}
	f, err := eng.Compile(seq)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Valid = true
	resp.Postfix = f.Postfix.String()

	run, err := eng.Run(ctx, f, requestDataset(req.Rows))
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	resp.Message = run.Message
	resp.Results = make([]RowResult, len(run.Results))
	for i, r := range run.Results {
		rr := RowResult{Index: r.Index}
		if r.OK() {
			v := r.Value
			rr.Value = &v
		} else {
			rr.Error = r.Err.Error()
			rr.Category = domerr.Category(r.Err)
		}
		resp.Results[i] = rr
	}
	return resp
}

func requestSequence(eng *engine.Engine, req *Request) (*token.Sequence, error) {
	if req.Formula != "" && len(req.Tokens) > 0 {
		return nil, fmt.Errorf("request must set either formula or tokens, not both")
	}
	if req.Formula != "" {
		return eng.Parse(req.Formula)
	}

	seq := token.NewSequence()
	for i, dto := range req.Tokens {
		tok, err := dto.Token()
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		seq.Append(tok)
	}
	return seq, nil
}

// Token converts the wire form into a token
func (d TokenDTO) Token() (token.Token, error) {
	switch d.Type {
	case "column":
		return token.Column(d.Value), nil
	case "operator":
		return token.OperatorFromSymbol(d.Value)
	case "paren":
		switch d.Value {
		case "(":
			return token.OpenParen(), nil
		case ")":
			return token.CloseParen(), nil
		}
		return token.Token{}, fmt.Errorf("invalid paren %q", d.Value)
	case "number":
		return token.Number(d.Number), nil
	default:
		return token.Token{}, fmt.Errorf("unknown token type %q", d.Type)
	}
}

// requestDataset collects rows into a dataset whose columns are the union of
// the row keys
func requestDataset(rows []data.Row) *data.Dataset {
	seen := make(map[string]struct{})
	for i := range rows {
		if rows[i].Data == nil {
			rows[i] = data.NewRow(nil)
		}
		for k := range rows[i].Data {
			seen[k] = struct{}{}
		}
	}
	ds := data.NewDataset("request", slices.Sorted(maps.Keys(seen)))
	ds.Rows = rows
	return ds
}
