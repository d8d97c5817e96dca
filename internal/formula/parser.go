package formula

import (
	"fmt"

	"github.com/eligrid/eligrid/internal/operators"
	"github.com/eligrid/eligrid/internal/types"
)

// LiteralParser interprets one raw literal token. Callers supply it to
// observe every literal instance the parser encounters (e.g. to collect the
// distinct variables of a formula) while reusing one parsing algorithm.
type LiteralParser func(raw string) (types.Literal, error)

// parser consumes tokens and builds an Expr tree. Grammar, with OR lowest and
// NOT highest:
//
//	expr   := term (OR term)*
//	term   := factor (AND factor)*
//	factor := NOT factor | LPAREN expr RPAREN | LITERAL
type parser struct {
	tokens   []Token
	pos      int
	formula  string
	literals LiteralParser
}

// Parse tokenizes and parses a formula, interpreting each literal with the
// default rules (display name = raw text).
func Parse(formula string, cfg *operators.Config) (Expr, error) {
	return ParseWith(formula, func(raw string) (types.Literal, error) {
		return ParseLiteral(raw, raw, cfg)
	}, cfg)
}

// ParseWith tokenizes and parses a formula, handing every literal token to
// lp. Errors from lp are re-wrapped with the literal's source position and
// context.
func ParseWith(formula string, lp LiteralParser, cfg *operators.Config) (Expr, error) {
	tokens, err := Tokenize(formula, cfg)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &ParseError{Msg: "formula is empty", Pos: 0, Near: near(formula, 0, nearWindow)}
	}
	p := &parser{tokens: tokens, formula: formula, literals: lp}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok != nil {
		return nil, p.errorAt(fmt.Sprintf("unexpected token %q", tok.Value), tok.Pos)
	}
	return node, nil
}

func (p *parser) errorAt(msg string, pos int) error {
	return &ParseError{Msg: msg, Pos: pos, Near: near(p.formula, pos, nearWindow)}
}

func (p *parser) current() *Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) consume(expected TokenKind) (Token, error) {
	tok := p.current()
	if tok == nil {
		return Token{}, p.errorAt("unexpected end of formula", len(p.formula))
	}
	if tok.Kind != expected {
		return Token{}, p.errorAt(fmt.Sprintf("expected %s but got %s (%q)", expected, tok.Kind, tok.Value), tok.Pos)
	}
	p.pos++
	return *tok, nil
}

func (p *parser) parseExpr() (Expr, error) {
	node, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for tok := p.current(); tok != nil && tok.Kind == TokenOr; tok = p.current() {
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		node = Or(node, right)
	}
	return node, nil
}

func (p *parser) parseTerm() (Expr, error) {
	node, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for tok := p.current(); tok != nil && tok.Kind == TokenAnd; tok = p.current() {
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		node = And(node, right)
	}
	return node, nil
}

func (p *parser) parseFactor() (Expr, error) {
	tok := p.current()
	if tok == nil {
		return nil, p.errorAt("unexpected end of formula", len(p.formula))
	}
	switch tok.Kind {
	case TokenNot:
		p.pos++
		child, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return Not(child), nil
	case TokenLParen:
		p.pos++
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenRParen); err != nil {
			return nil, err
		}
		return node, nil
	case TokenLiteral:
		p.pos++
		lit, err := p.literals(tok.Value)
		if err != nil {
			return nil, &ParseError{
				Msg:  fmt.Sprintf("invalid literal: %v", err),
				Pos:  tok.Pos,
				Near: near(p.formula, tok.Pos, nearWindow),
			}
		}
		return LitOf(lit), nil
	default:
		return nil, p.errorAt(fmt.Sprintf("unexpected token %q", tok.Value), tok.Pos)
	}
}
