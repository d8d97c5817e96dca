// Package operators loads and validates the operator token tables that drive
// formula tokenization. A table maps each logical role (AND, OR, NOT, EQ, NEQ,
// LPAREN, RPAREN) to one or more textual tokens, so the same engine can read
// formulas written with "&"/"|" or with "AND"/"OR" keywords.
package operators

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Role names used as document keys.
const (
	RoleAnd    = "AND"
	RoleOr     = "OR"
	RoleNot    = "NOT"
	RoleEq     = "EQ"
	RoleNeq    = "NEQ"
	RoleLParen = "LPAREN"
	RoleRParen = "RPAREN"
)

// requiredRoles must each carry at least one token. NOT is optional.
var requiredRoles = []string{RoleAnd, RoleOr, RoleEq, RoleNeq, RoleLParen, RoleRParen}

// ConfigError reports a malformed or incomplete operator configuration.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "operator config: " + e.Reason
	}
	return fmt.Sprintf("operator config %s: %s", e.Path, e.Reason)
}

// ExprOp is one expression-level operator token, precomputed for the
// tokenizer: Word marks purely alphabetic tokens that only match on word
// boundaries.
type ExprOp struct {
	Token string
	Role  string
	Word  bool
}

// Config is a validated, immutable operator table. Safe for concurrent use.
type Config struct {
	mapping map[string][]string
	exprOps []ExprOp
	eqOps   []string
	neqOps  []string
	source  string
}

// Default returns the built-in operator table.
func Default() *Config {
	cfg, err := build(map[string][]string{
		RoleAnd:    {"&", "AND"},
		RoleOr:     {"|", "OR"},
		RoleNot:    {"!", "NOT"},
		RoleNeq:    {"<>", "!="},
		RoleEq:     {"="},
		RoleLParen: {"("},
		RoleRParen: {")"},
	}, "")
	if err != nil {
		panic(err) // the built-in table is always valid
	}
	return cfg
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Config{}
)

// Load reads, validates and caches an operator table. The document may be
// YAML or JSON (YAML is a superset); it must be a mapping from role names to
// lists of token strings. Results are cached by resolved path for the
// lifetime of the process.
func Load(path string) (*Config, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		resolved = path
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cfg, ok := cache[resolved]; ok {
		return cfg, nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &ConfigError{Path: resolved, Reason: fmt.Sprintf("could not read file: %v", err)}
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Path: resolved, Reason: fmt.Sprintf("document must be a mapping of roles to token lists: %v", err)}
	}
	if raw == nil {
		return nil, &ConfigError{Path: resolved, Reason: "document is empty"}
	}

	cfg, err := build(raw, resolved)
	if err != nil {
		return nil, err
	}
	cache[resolved] = cfg
	return cfg, nil
}

// WriteDefault writes the built-in table to path as YAML, for `eligrid init`.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default().mapping)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isWordToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < 'A' || (r > 'Z' && r < 'a') || r > 'z' {
			return false
		}
	}
	return true
}

// normalizeToken trims a token and uppercases keyword operators so they match
// case-insensitively.
func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if isWordToken(token) {
		return strings.ToUpper(token)
	}
	return token
}

func build(raw map[string][]string, source string) (*Config, error) {
	mapping := make(map[string][]string, len(raw))
	owner := map[string]string{}

	for role, tokens := range raw {
		normalized := make([]string, 0, len(tokens))
		for _, t := range tokens {
			token := normalizeToken(t)
			if token == "" {
				return nil, &ConfigError{Path: source, Reason: fmt.Sprintf("role %q has an empty token", role)}
			}
			if prev, dup := owner[token]; dup && prev != role {
				return nil, &ConfigError{Path: source, Reason: fmt.Sprintf("token %q claimed by both %q and %q", token, prev, role)}
			}
			owner[token] = role
			normalized = append(normalized, token)
		}
		if len(normalized) > 0 {
			mapping[role] = normalized
		}
	}

	for _, role := range requiredRoles {
		if len(mapping[role]) == 0 {
			return nil, &ConfigError{Path: source, Reason: fmt.Sprintf("role %q must have at least one token", role)}
		}
	}

	cfg := &Config{mapping: mapping, source: source}

	for _, entry := range []struct {
		role string
		word func(string) bool
	}{
		{RoleLParen, nil},
		{RoleRParen, nil},
		{RoleNot, isWordToken},
		{RoleAnd, isWordToken},
		{RoleOr, isWordToken},
	} {
		for _, token := range mapping[entry.role] {
			word := false
			if entry.word != nil {
				word = entry.word(token)
			}
			cfg.exprOps = append(cfg.exprOps, ExprOp{Token: token, Role: entry.role, Word: word})
		}
	}
	// Longest-match-first: multi-character tokens are tried before shorter
	// tokens that are textual prefixes of them. This must not depend on the
	// document's key order.
	sort.SliceStable(cfg.exprOps, func(i, j int) bool {
		return len(cfg.exprOps[i].Token) > len(cfg.exprOps[j].Token)
	})

	cfg.eqOps = longestFirst(mapping[RoleEq])
	cfg.neqOps = longestFirst(mapping[RoleNeq])

	return cfg, nil
}

func longestFirst(tokens []string) []string {
	out := append([]string(nil), tokens...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// ExpressionOps returns the AND/OR/NOT/paren tokens in descending token
// length, each tagged with whether it needs word-boundary matching.
func (c *Config) ExpressionOps() []ExprOp { return c.exprOps }

// EqTokens returns the equality comparator tokens, longest first.
func (c *Config) EqTokens() []string { return c.eqOps }

// NeqTokens returns the inequality comparator tokens, longest first.
func (c *Config) NeqTokens() []string { return c.neqOps }

// Source returns the resolved path the table was loaded from, or "" for the
// built-in table.
func (c *Config) Source() string { return c.source }

// Summary returns a compact role -> tokens view for diagnostics. The result
// is a copy; mutating it does not affect the config.
func (c *Config) Summary() map[string][]string {
	out := make(map[string][]string, len(c.mapping))
	for role, tokens := range c.mapping {
		out[role] = append([]string(nil), tokens...)
	}
	return out
}

// SummaryString renders the role -> tokens view with stable role order, for
// embedding in error messages.
func (c *Config) SummaryString() string {
	roles := []string{RoleAnd, RoleOr, RoleNot, RoleEq, RoleNeq, RoleLParen, RoleRParen}
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for _, role := range roles {
		tokens, ok := c.mapping[role]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s:[%s]", role, strings.Join(tokens, " "))
	}
	b.WriteByte('}')
	return b.String()
}
