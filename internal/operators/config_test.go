package operators

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "operators.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"&", "AND"}, cfg.Summary()[RoleAnd])
	assert.Equal(t, []string{"<>", "!="}, cfg.NeqTokens())
	assert.Equal(t, []string{"="}, cfg.EqTokens())

	ops := cfg.ExpressionOps()
	require.NotEmpty(t, ops)
	for i := 1; i < len(ops); i++ {
		assert.GreaterOrEqual(t, len(ops[i-1].Token), len(ops[i].Token),
			"expression operators must be sorted longest first")
	}
}

func TestLoadValidatesDocument(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "not a mapping",
			content: "- AND\n- OR\n",
			wantErr: "mapping",
		},
		{
			name:    "missing required role",
			content: "AND: ['&']\nOR: ['|']\nEQ: ['=']\nNEQ: ['<>']\nLPAREN: ['(']\n",
			wantErr: `"RPAREN"`,
		},
		{
			name:    "empty token",
			content: "AND: ['&', '  ']\nOR: ['|']\nEQ: ['=']\nNEQ: ['<>']\nLPAREN: ['(']\nRPAREN: [')']\n",
			wantErr: "empty token",
		},
		{
			name:    "duplicate token across roles",
			content: "AND: ['&']\nOR: ['&']\nEQ: ['=']\nNEQ: ['<>']\nLPAREN: ['(']\nRPAREN: [')']\n",
			wantErr: "claimed by both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadAcceptsJSONDocument(t *testing.T) {
	path := writeConfig(t, `{"AND": ["&&"], "OR": ["|"], "NOT": ["!"], "NEQ": ["<>"], "EQ": ["="], "LPAREN": ["("], "RPAREN": [")"]}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"&&"}, cfg.Summary()[RoleAnd])
}

func TestLoadNotRoleIsOptional(t *testing.T) {
	path := writeConfig(t, "AND: ['&']\nOR: ['|']\nEQ: ['=']\nNEQ: ['<>']\nLPAREN: ['(']\nRPAREN: [')']\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Summary()[RoleNot])
}

func TestLoadUppercasesKeywordTokens(t *testing.T) {
	path := writeConfig(t, "AND: ['and']\nOR: ['or']\nNOT: ['not']\nEQ: ['=']\nNEQ: ['<>']\nLPAREN: ['(']\nRPAREN: [')']\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AND"}, cfg.Summary()[RoleAnd])
	assert.Equal(t, []string{"OR"}, cfg.Summary()[RoleOr])
}

func TestLoadCachesByResolvedPath(t *testing.T) {
	path := writeConfig(t, "AND: ['&']\nOR: ['|']\nEQ: ['=']\nNEQ: ['<>']\nLPAREN: ['(']\nRPAREN: [')']\n")

	first, err := Load(path)
	require.NoError(t, err)

	// Rewriting the file must not change the cached value.
	require.NoError(t, os.WriteFile(path, []byte("broken"), 0o644))
	second, err := Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operators.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Summary(), cfg.Summary())
}

func TestSummaryStringHasStableRoleOrder(t *testing.T) {
	s := Default().SummaryString()
	assert.Contains(t, s, "AND:[& AND]")
	assert.Contains(t, s, "NEQ:[<> !=]")
	assert.Less(t, strings.Index(s, "AND:"), strings.Index(s, "OR:"))
	assert.Less(t, strings.Index(s, "EQ:"), strings.Index(s, "NEQ:"))
}
