package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eligrid/eligrid/internal/types"
)

var docColumns = []string{
	"Activity", "SheetName", "Goal", "Type",
	"RuleName", "ClauseText", "LiteralCount",
	"SectionKeyA", "SectionKeyB", "SectionKeyC",
	"SectionKeyF", "SectionKeyG", "SectionKeyH",
	"Status", "ErrorMessage",
}

type docLiteral struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	Op            string `json:"op"`
	TechnicalName string `json:"technicalName,omitempty"`
	QuestionText  string `json:"questionText,omitempty"`
}

type docClause struct {
	Rule     string       `json:"rule"`
	Literals []docLiteral `json:"literals"`
}

type docSection struct {
	Key            map[string]string `json:"key"`
	SheetName      string            `json:"sheetName"`
	FormulaIDs     string            `json:"formulaIds"`
	FormulaDisplay string            `json:"formulaDisplay"`
	Variables      []docLiteral      `json:"variables"`
	Rules          []docClause       `json:"rules"`
	Status         string            `json:"status"`
	Error          string            `json:"error,omitempty"`
}

type docFile struct {
	Activity    string       `json:"activity"`
	GeneratedAt time.Time    `json:"generatedAt"`
	RunID       string       `json:"runId,omitempty"`
	Sections    []docSection `json:"sections"`
}

func docLiteralOf(lit types.Literal) docLiteral {
	return docLiteral{
		ID:            lit.ID,
		DisplayName:   lit.DisplayName,
		Op:            string(lit.Op),
		TechnicalName: lit.TechnicalName,
		QuestionText:  lit.QuestionText,
	}
}

func keyOf(key types.SectionKey) map[string]string {
	return map[string]string{
		"A": key.EnvObjective,
		"B": key.SectionNumber,
		"C": key.Activity,
		"F": key.Goal,
		"G": key.TypeLabel,
		"H": key.FormulaIDs,
	}
}

// WriteDocs writes docs.csv (one row per alignment rule, or one row per
// failed section) and docs.json (the full section dump) into folder.
func WriteDocs(folder, activity, runID string, sections []types.SectionResult) error {
	if err := writeDocsCSV(filepath.Join(folder, "docs.csv"), activity, sections); err != nil {
		return err
	}
	return writeDocsJSON(filepath.Join(folder, "docs.json"), activity, runID, sections)
}

func writeDocsCSV(path, activity string, sections []types.SectionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(docColumns); err != nil {
		return err
	}

	for _, section := range sections {
		base := func(rule, clauseText string, literals int) []string {
			return []string{
				activity, section.SheetName, section.Key.Goal, section.Key.TypeLabel,
				rule, clauseText, fmt.Sprint(literals),
				section.Key.EnvObjective, section.Key.SectionNumber, section.Key.Activity,
				section.Key.Goal, section.Key.TypeLabel, section.Key.FormulaIDs,
				section.Status, section.Err,
			}
		}

		if section.Status != types.StatusOK {
			if err := w.Write(base("", "", 0)); err != nil {
				return err
			}
			continue
		}
		for i, clause := range section.DNF {
			rule := fmt.Sprintf("Alignment Rule %d", i+1)
			if err := w.Write(base(rule, ClauseText(clause), len(clause))); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func writeDocsJSON(path, activity, runID string, sections []types.SectionResult) error {
	file := docFile{
		Activity:    activity,
		GeneratedAt: time.Now().UTC(),
		RunID:       runID,
		Sections:    make([]docSection, 0, len(sections)),
	}

	for _, section := range sections {
		ds := docSection{
			Key:            keyOf(section.Key),
			SheetName:      section.SheetName,
			FormulaIDs:     section.FormulaIDs,
			FormulaDisplay: section.FormulaDisplay,
			Variables:      []docLiteral{},
			Rules:          []docClause{},
			Status:         section.Status,
			Error:          section.Err,
		}
		for _, v := range section.Variables {
			ds.Variables = append(ds.Variables, docLiteralOf(v))
		}
		for i, clause := range section.DNF {
			dc := docClause{Rule: fmt.Sprintf("Alignment Rule %d", i+1)}
			for _, lit := range clause {
				dc.Literals = append(dc.Literals, docLiteralOf(lit))
			}
			ds.Rules = append(ds.Rules, dc)
		}
		file.Sections = append(file.Sections, ds)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
