package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eligrid/eligrid/internal/operators"
	"github.com/eligrid/eligrid/internal/types"
)

func TestParseLiteralSuffixResolution(t *testing.T) {
	cfg := operators.Default()

	tests := []struct {
		raw    string
		wantID string
		wantOp types.LiteralOp
	}{
		{"a", "a", types.OpEq1},
		{"a=1", "a", types.OpEq1},
		{"a=0", "a", types.OpEq0},
		{"!a", "a", types.OpNeq1},
		{"a<>1", "a", types.OpNeq1},
		{"a!=1", "a", types.OpNeq1},
		{"  spaced_1  ", "spaced_1", types.OpEq1},
		{"ePBN993847_1<>1", "ePBN993847_1", types.OpNeq1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			lit, err := ParseLiteral(tt.raw, "display", cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, lit.ID)
			assert.Equal(t, tt.wantOp, lit.Op)
			assert.Equal(t, "display", lit.DisplayName)
		})
	}
}

func TestParseLiteralDisplayNameDefaults(t *testing.T) {
	lit, err := ParseLiteral("a=1", "a=1", operators.Default())
	require.NoError(t, err)
	assert.Equal(t, "a=1", lit.DisplayName)
}

func TestParseLiteralRejections(t *testing.T) {
	cfg := operators.Default()

	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"less or equal", "a<=1", "ordering comparison"},
		{"greater or equal", "a>=1", "ordering comparison"},
		{"not equal to zero", "A<>0", `"<>0"`},
		{"bang-equal zero", "A!=0", `"!=0"`},
		{"xor keyword", "a XOR b", "unsupported operator"},
		{"if keyword", "IF a", "unsupported operator"},
		{"stray angle bracket", "a<b", "invalid literal identifier"},
		{"empty after bang", "!", "missing identifier"},
		{"illegal characters", "a-b", "invalid literal identifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLiteral(tt.raw, tt.raw, cfg)
			require.Error(t, err)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseLiteralKeywordsInsideIdentifiersAreFine(t *testing.T) {
	cfg := operators.Default()

	// XOR/IF only count as words, not as substrings of identifiers.
	lit, err := ParseLiteral("LIFE", "LIFE", cfg)
	require.NoError(t, err)
	assert.Equal(t, "LIFE", lit.ID)

	lit, err = ParseLiteral("XORBIT=1", "XORBIT=1", cfg)
	require.NoError(t, err)
	assert.Equal(t, "XORBIT", lit.ID)
}

func TestParseLiteralCustomNeqToken(t *testing.T) {
	cfg := testConfig(t, map[string][]string{
		"AND": {"&"}, "OR": {"|"}, "NOT": {"!"},
		"NEQ": {"><"}, "EQ": {"="}, "LPAREN": {"("}, "RPAREN": {")"},
	})

	lit, err := ParseLiteral("a><1", "a", cfg)
	require.NoError(t, err)
	assert.Equal(t, types.OpNeq1, lit.Op)

	_, err = ParseLiteral("a><0", "a", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"><0"`)
}
