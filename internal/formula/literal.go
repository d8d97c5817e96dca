package formula

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eligrid/eligrid/internal/operators"
	"github.com/eligrid/eligrid/internal/types"
)

var (
	identifierRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	keywordRe    = regexp.MustCompile(`(?i)(^|[^A-Za-z0-9_])(XOR|IF)([^A-Za-z0-9_]|$)`)
)

// ParseLiteral interprets a raw literal's trailing comparison suffix into an
// identifier plus one of the three canonical operations. Resolution order:
// leading '!' -> NEQ1; configured NEQ token + "1" -> NEQ1; configured EQ
// token + "0"/"1" -> EQ0/EQ1; bare identifier -> EQ1.
//
// Ordering comparisons (<=, >=), explicit not-equal-to-0, and XOR/IF keywords
// are rejected: the grammar has no meaning for them inside a literal.
func ParseLiteral(raw, displayName string, cfg *operators.Config) (types.Literal, error) {
	text := strings.TrimSpace(raw)

	if strings.Contains(text, "<=") || strings.Contains(text, ">=") {
		return types.Literal{}, &ParseError{
			Msg:  "unsupported ordering comparison in literal: " + text,
			Near: text,
		}
	}
	// Inequality is only meaningful against 1. An explicit "<>0" (or any
	// configured NEQ token against 0) must hard-fail rather than be silently
	// approximated. Stray angle brackets that are not an NEQ comparison fall
	// through and fail the identifier pattern below.
	for _, neq := range cfg.NeqTokens() {
		if strings.HasSuffix(text, neq+"0") {
			return types.Literal{}, &ParseError{
				Msg:  fmt.Sprintf("comparison %q is not allowed (use %q): %s", neq+"0", neq+"1", text),
				Near: text,
			}
		}
	}
	if keywordRe.MatchString(text) {
		return types.Literal{}, &ParseError{
			Msg:  "unsupported operator in literal: " + text,
			Near: text,
		}
	}

	op := types.OpEq1
	identifier := text

	if strings.HasPrefix(text, "!") {
		identifier = strings.TrimSpace(text[1:])
		op = types.OpNeq1
	} else {
		// NEQ before EQ so "!=" is not misread as "=".
		if id, ok := trimSuffixOp(text, cfg.NeqTokens(), "1"); ok {
			identifier, op = id, types.OpNeq1
		} else if id, ok := trimSuffixOp(text, cfg.EqTokens(), "0"); ok {
			identifier, op = id, types.OpEq0
		} else if id, ok := trimSuffixOp(text, cfg.EqTokens(), "1"); ok {
			identifier, op = id, types.OpEq1
		}
	}

	if identifier == "" {
		return types.Literal{}, &ParseError{Msg: "literal missing identifier", Near: text}
	}
	if !identifierRe.MatchString(identifier) {
		return types.Literal{}, &ParseError{
			Msg:  fmt.Sprintf("invalid literal identifier %q (expected letters, digits or underscore)", identifier),
			Near: text,
		}
	}

	return types.Literal{ID: identifier, DisplayName: displayName, Op: op}, nil
}

func trimSuffixOp(text string, tokens []string, digit string) (string, bool) {
	for _, token := range tokens {
		if strings.HasSuffix(text, token+digit) {
			return strings.TrimSpace(text[:len(text)-len(token)-len(digit)]), true
		}
	}
	return "", false
}
