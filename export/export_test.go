package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eligrid/eligrid/internal/types"
)

func sampleSection() types.SectionResult {
	return types.SectionResult{
		Key: types.SectionKey{
			EnvObjective:  "Climate Change Mitigation",
			SectionNumber: "4.1",
			Activity:      "Manufacture of cement",
			Goal:          "CCM",
			TypeLabel:     "DNSH",
			FormulaIDs:    "A & (B | !A2)",
		},
		SheetName:      "CCM_4.1",
		FormulaIDs:     "A & (B | !A2)",
		FormulaDisplay: "A and (B or not A2)",
		Variables: []types.Literal{
			{ID: "A", DisplayName: "A", Op: types.OpEq1, TechnicalName: "tech|name", QuestionText: "Is A?"},
			{ID: "A2", DisplayName: "A2", Op: types.OpNeq1},
			{ID: "B", DisplayName: "B", Op: types.OpEq1},
		},
		DNF: []types.Clause{
			{{ID: "A", DisplayName: "A", Op: types.OpEq1}, {ID: "A2", DisplayName: "A2", Op: types.OpNeq1}},
			{{ID: "A", DisplayName: "A", Op: types.OpEq1}, {ID: "B", DisplayName: "B", Op: types.OpEq1}},
		},
		Status: types.StatusOK,
	}
}

func failedSection() types.SectionResult {
	s := sampleSection()
	s.SheetName = ""
	s.Variables = nil
	s.DNF = nil
	s.Status = types.StatusFailed
	s.Err = "boom"
	return s
}

func TestClauseText(t *testing.T) {
	clause := types.Clause{
		{ID: "A", DisplayName: "A", Op: types.OpEq1},
		{ID: "B", DisplayName: "B", Op: types.OpNeq1},
	}
	assert.Equal(t, "A (EQ1) AND B (NEQ1)", ClauseText(clause))
}

func TestSectionMarkdown(t *testing.T) {
	md := SectionMarkdown(sampleSection(), "Manufacture of cement")

	assert.Contains(t, md, "# Manufacture of cement - CCM_4.1")
	assert.Contains(t, md, "**Goal:** CCM")
	assert.Contains(t, md, "- Alignment Rule 1: A (EQ1) AND A2 (NEQ1)")
	assert.Contains(t, md, "| ID | Technical name | Question text | Alignment Rule 1 | Alignment Rule 2 |")
	assert.Contains(t, md, `tech\|name`, "pipes in cells must be escaped")

	// Variable rows carry the op tokens under the rules that constrain them.
	lines := strings.Split(md, "\n")
	var rowA string
	for _, line := range lines {
		if strings.HasPrefix(line, "| A |") {
			rowA = line
			break
		}
	}
	require.NotEmpty(t, rowA)
	assert.Contains(t, rowA, "| Yes | Yes |")
}

func TestSectionMarkdownUnsatisfiable(t *testing.T) {
	s := sampleSection()
	s.DNF = nil

	md := SectionMarkdown(s, "act")
	assert.Contains(t, md, "- (unsatisfiable)")
}

func TestWriteSectionMarkdownSkipsFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSectionMarkdown(dir, failedSection(), "act"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.csv")
	require.NoError(t, WriteWorkbook(path, "act", []types.SectionResult{sampleSection(), failedSection()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Sheet,CCM_4.1")
	assert.Contains(t, content, "ID,Technical name,Question text,Alignment Rule 1,Alignment Rule 2")
	assert.Contains(t, content, "Not Yes")
	assert.NotContains(t, content, "boom", "failed sections do not get sheets")
}

func TestWriteWorkbookPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.csv")
	require.NoError(t, WriteWorkbook(path, "act", []types.SectionResult{failedSection()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No valid sections")
}

func TestWriteDocs(t *testing.T) {
	dir := t.TempDir()
	sections := []types.SectionResult{sampleSection(), failedSection()}
	require.NoError(t, WriteDocs(dir, "act", "run-1", sections))

	f, err := os.Open(filepath.Join(dir, "docs.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// Header, two rule rows for the OK section, one row for the failure.
	require.Len(t, records, 4)
	assert.Equal(t, docColumns, records[0])
	assert.Equal(t, "Alignment Rule 1", records[1][4])
	assert.Equal(t, "FAILED", records[3][13])
	assert.Equal(t, "boom", records[3][14])

	data, err := os.ReadFile(filepath.Join(dir, "docs.json"))
	require.NoError(t, err)
	var doc struct {
		Activity string `json:"activity"`
		RunID    string `json:"runId"`
		Sections []struct {
			Key    map[string]string `json:"key"`
			Status string            `json:"status"`
			Rules  []struct {
				Rule string `json:"rule"`
			} `json:"rules"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "act", doc.Activity)
	assert.Equal(t, "run-1", doc.RunID)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "4.1", doc.Sections[0].Key["B"])
	assert.Len(t, doc.Sections[0].Rules, 2)
	assert.Equal(t, "FAILED", doc.Sections[1].Status)
}
