package runio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRunDir(t *testing.T) {
	root := t.TempDir()

	dir, err := CreateRunDir(filepath.Join(root, "out"))
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.True(t, filepath.IsAbs(dir))
	assert.NotContains(t, filepath.Base(dir), ":")
}

func TestCreateRunDirDistinct(t *testing.T) {
	root := t.TempDir()

	// Back-to-back runs within the same millisecond must still get distinct
	// directories via the _N suffix.
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		dir, err := CreateRunDir(root)
		require.NoError(t, err)
		assert.False(t, seen[dir], "run dirs must not collide")
		seen[dir] = true
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Manufacture of cement", "Manufacture_of_cement"},
		{"a/b\\c:d", "a_b_c_d"},
		{"  trimmed  ", "trimmed"},
		{"///", "output"},
		{"", "output"},
		{"already-fine_1.2", "already-fine_1.2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "CCM_4.1", SanitizeSheetName("CCM_4.1"))
	assert.Equal(t, "CCM_41", SanitizeSheetName("CCM_4[1]*?"))
	assert.Equal(t, "abc", SanitizeSheetName(" a/b\\c' "))
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}

	first := UniqueSheetName("CCM_4.1", used)
	second := UniqueSheetName("CCM_4.1", used)
	third := UniqueSheetName("CCM_4.1", used)

	assert.Equal(t, "CCM_4.1", first)
	assert.Equal(t, "CCM_4.1_1", second)
	assert.Equal(t, "CCM_4.1_2", third)
}

func TestUniqueSheetNameTruncates(t *testing.T) {
	used := map[string]bool{}
	long := strings.Repeat("x", 40)

	first := UniqueSheetName(long, used)
	second := UniqueSheetName(long, used)

	assert.Len(t, first, 31)
	assert.LessOrEqual(t, len(second), 31)
	assert.True(t, strings.HasSuffix(second, "_1"))
	assert.NotEqual(t, first, second)
}
