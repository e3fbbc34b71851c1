package token

import (
	"fmt"
	"strings"
)

// Sequence is a formula in infix order as assembled by the user.
// It is not validated; see the validator package.
type Sequence struct {
	tokens []Token
}

// NewSequence creates a sequence holding tokens
func NewSequence(tokens ...Token) *Sequence {
	s := &Sequence{tokens: make([]Token, 0, len(tokens))}
	s.tokens = append(s.tokens, tokens...)
	return s
}

// Append adds a token at the end
func (s *Sequence) Append(t Token) {
	s.tokens = append(s.tokens, t)
}

// Insert places t before index i. i == Len() appends.
func (s *Sequence) Insert(i int, t Token) error {
	if i < 0 || i > len(s.tokens) {
		return fmt.Errorf("insert index %d out of range [0,%d]", i, len(s.tokens))
	}
	s.tokens = append(s.tokens, Token{})
	copy(s.tokens[i+1:], s.tokens[i:])
	s.tokens[i] = t
	return nil
}

// RemoveAt deletes the token at index i
func (s *Sequence) RemoveAt(i int) error {
	if i < 0 || i >= len(s.tokens) {
		return fmt.Errorf("remove index %d out of range [0,%d)", i, len(s.tokens))
	}
	s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
	return nil
}

// Clear drops every token
func (s *Sequence) Clear() {
	s.tokens = s.tokens[:0]
}

// Len returns the number of tokens
func (s *Sequence) Len() int {
	return len(s.tokens)
}

// At returns the token at index i
func (s *Sequence) At(i int) Token {
	return s.tokens[i]
}

// Tokens returns a copy of the tokens
func (s *Sequence) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Columns lists referenced column names in order of first appearance
func (s *Sequence) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, t := range s.tokens {
		if t.Kind == KindColumn && !seen[t.Column] {
			seen[t.Column] = true
			cols = append(cols, t.Column)
		}
	}
	return cols
}

func (s *Sequence) String() string {
	return join(s.tokens)
}

// Postfix is a formula in Reverse Polish order. It is produced once per
// formula and shared read-only by every row evaluation.
type Postfix []Token

func (p Postfix) String() string {
	return join(p)
}

func join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
