package formula

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/eligrid/eligrid/internal/operators"
)

// lexer scans a formula into tokens using a configured operator table.
type lexer struct {
	input string
	pos   int
	cfg   *operators.Config
}

// Tokenize converts a formula string into a token sequence. Operators are
// matched longest-first; purely alphabetic operator tokens only match on word
// boundaries, so "ANDREW" is one identifier rather than "AND" + "REW".
// Anything that is not an operator must scan as a literal: an optional
// leading '!', identifier characters, and optionally one comparator token
// followed by exactly '0' or '1'.
func Tokenize(formula string, cfg *operators.Config) ([]Token, error) {
	l := &lexer{input: formula, cfg: cfg}
	return l.run()
}

func (l *lexer) run() ([]Token, error) {
	var tokens []Token
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if unicode.IsSpace(r) {
			l.pos += size
			continue
		}

		if tok, ok := l.matchOperator(); ok {
			tokens = append(tokens, tok)
			continue
		}

		tok, err := l.scanLiteral()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// matchOperator tries every configured expression operator at the current
// position, longest token first.
func (l *lexer) matchOperator() (Token, bool) {
	for _, op := range l.cfg.ExpressionOps() {
		if !l.matchesAt(l.pos, op) {
			continue
		}
		tok := Token{Kind: TokenKind(op.Role), Value: op.Token, Pos: l.pos}
		l.pos += len(op.Token)
		return tok, true
	}
	return Token{}, false
}

func (l *lexer) matchesAt(pos int, op operators.ExprOp) bool {
	end := pos + len(op.Token)
	if end > len(l.input) {
		return false
	}
	if op.Word {
		if !strings.EqualFold(l.input[pos:end], op.Token) {
			return false
		}
		beforeOK := pos == 0 || !isIdentChar(l.input[pos-1])
		afterOK := end == len(l.input) || !isIdentChar(l.input[end])
		return beforeOK && afterOK
	}
	return l.input[pos:end] == op.Token
}

func (l *lexer) scanLiteral() (Token, error) {
	start := l.pos
	if l.input[l.pos] == '!' {
		l.pos++ // immediate NEQ1 marker
	}

	identStart := l.pos
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == identStart {
		r, _ := utf8.DecodeRuneInString(l.input[start:])
		return Token{}, &ParseError{
			Msg:  fmt.Sprintf("unknown character %q", r),
			Pos:  start,
			Near: near(l.input, start, nearWindow),
			Ops:  l.cfg.SummaryString(),
		}
	}

	// Optional trailing comparator. NEQ before EQ so "!=" is not misread as
	// "!" + "=".
	comparator := ""
	for _, comp := range append(append([]string{}, l.cfg.NeqTokens()...), l.cfg.EqTokens()...) {
		if strings.HasPrefix(l.input[l.pos:], comp) {
			comparator = comp
			l.pos += len(comp)
			break
		}
	}
	if comparator != "" {
		if l.pos >= len(l.input) || (l.input[l.pos] != '0' && l.input[l.pos] != '1') {
			got := "<eof>"
			if l.pos < len(l.input) {
				got = string(l.input[l.pos])
			}
			return Token{}, &ParseError{
				Msg:  fmt.Sprintf("expected 0 or 1 after %q, got %q", comparator, got),
				Pos:  l.pos,
				Near: near(l.input, l.pos, nearWindow),
				Ops:  l.cfg.SummaryString(),
			}
		}
		l.pos++
	}

	return Token{Kind: TokenLiteral, Value: l.input[start:l.pos], Pos: start}, nil
}
