package token

import "testing"

func TestOperatorFromSymbol(t *testing.T) {
	tests := []struct {
		symbol   string
		expected Op
	}{
		{"+", OpAdd},
		{"-", OpSub},
		{" * ", OpMul},
		{"/", OpDiv},
	}

	for _, tt := range tests {
		tok, err := OperatorFromSymbol(tt.symbol)
		if err != nil {
			t.Fatalf("OperatorFromSymbol(%q) returned error: %v", tt.symbol, err)
		}
		if !tok.IsOp(tt.expected) {
			t.Errorf("OperatorFromSymbol(%q) = %v, expected %v", tt.symbol, tok.Op, tt.expected)
		}
	}

	if _, err := OperatorFromSymbol("^"); err == nil {
		t.Error("expected error for unsupported operator")
	}
}

func TestSequenceEditing(t *testing.T) {
	seq := NewSequence(Column("a"), Operator(OpAdd), Column("b"))

	if err := seq.Insert(3, Operator(OpMul)); err != nil {
		t.Fatalf("insert at end failed: %v", err)
	}
	seq.Append(Column("c"))
	if got := seq.String(); got != "a + b * c" {
		t.Errorf("expected 'a + b * c', got %q", got)
	}

	if err := seq.Insert(0, OpenParen()); err != nil {
		t.Fatalf("insert at start failed: %v", err)
	}
	if got := seq.String(); got != "( a + b * c" {
		t.Errorf("expected '( a + b * c', got %q", got)
	}

	if err := seq.RemoveAt(0); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := seq.RemoveAt(10); err == nil {
		t.Error("expected out of range error")
	}
	if err := seq.Insert(-1, Column("x")); err == nil {
		t.Error("expected out of range error")
	}

	if seq.Len() != 5 {
		t.Errorf("expected 5 tokens, got %d", seq.Len())
	}

	seq.Clear()
	if seq.Len() != 0 {
		t.Errorf("expected empty sequence after Clear, got %d", seq.Len())
	}
}

func TestSequenceColumns(t *testing.T) {
	seq := NewSequence(Column("a"), Operator(OpMul), Column("b"), Operator(OpSub), Column("a"), Operator(OpAdd), Number(2))
	cols := seq.Columns()
	if len(cols) != 2 || cols[0] != "a" || cols[1] != "b" {
		t.Errorf("expected [a b], got %v", cols)
	}
}

func TestTokensReturnsCopy(t *testing.T) {
	seq := NewSequence(Column("a"))
	tokens := seq.Tokens()
	tokens[0] = Column("z")
	if seq.At(0).Column != "a" {
		t.Error("mutating Tokens() result changed the sequence")
	}
}

func TestTokenString(t *testing.T) {
	p := Postfix{Column("a"), Number(2.5), Operator(OpMul), Operator(OpNeg)}
	if got := p.String(); got != "a 2.5 * neg" {
		t.Errorf("unexpected postfix rendering %q", got)
	}
	if OpenParen().String() != "(" || CloseParen().String() != ")" {
		t.Error("unexpected parenthesis rendering")
	}
}
