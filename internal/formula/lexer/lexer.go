package lexer

import (
	"fmt"
	"strconv"

	"github.com/leengari/colcalc/internal/formula/token"
)

// Lexer turns formula text such as "(qty + bonus) * [Unit Price]" into tokens.
// Bare identifiers may contain letters, digits, '_' and '.', bracketed names
// may contain anything except ']'.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token. ok is false at end of input.
func (l *Lexer) NextToken() (tok token.Token, ok bool, err error) {
	l.skipWhitespace()

	line, col := l.line, l.column

	switch l.ch {
	case 0:
		return token.Token{}, false, nil
	case '+':
		tok = token.Operator(token.OpAdd)
	case '-':
		tok = token.Operator(token.OpSub)
	case '*':
		tok = token.Operator(token.OpMul)
	case '/':
		tok = token.Operator(token.OpDiv)
	case '(':
		tok = token.OpenParen()
	case ')':
		tok = token.CloseParen()
	case '[':
		name, err := l.readBracketed()
		if err != nil {
			return token.Token{}, false, fmt.Errorf("%w at line %d, col %d", err, line, col)
		}
		return token.Column(name), true, nil
	default:
		if isLetter(l.ch) {
			return token.Column(l.readIdentifier()), true, nil
		}
		if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			lit := l.readNumber()
			v, err := strconv.ParseFloat(lit, 64)
			if err != nil {
				return token.Token{}, false, fmt.Errorf("invalid number %q at line %d, col %d", lit, line, col)
			}
			return token.Number(v), true, nil
		}
		return token.Token{}, false, fmt.Errorf("illegal character %q at line %d, col %d", l.ch, line, col)
	}

	l.readChar()
	return tok, true, nil
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

func (l *Lexer) readBracketed() (string, error) {
	position := l.position + 1
	for {
		l.readChar()
		if l.ch == ']' || l.ch == 0 {
			break
		}
	}
	if l.ch == 0 {
		return "", fmt.Errorf("unterminated column name")
	}
	name := l.input[position:l.position]

	// Consume the closing bracket
	l.readChar()

	if name == "" {
		return "", fmt.Errorf("empty column name")
	}
	return name, nil
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize lexes the whole input into a Sequence
func Tokenize(input string) (*token.Sequence, error) {
	l := New(input)
	seq := token.NewSequence()
	for {
		tok, ok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		seq.Append(tok)
	}
	return seq, nil
}
