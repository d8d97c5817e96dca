// Package export renders processed sections into the per-activity output
// files: a truth-table CSV workbook, one markdown page per section, and flat
// docs files for downstream tooling.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eligrid/eligrid/internal/types"
)

// ClauseText renders one clause as "name (OP) AND name (OP) ...".
func ClauseText(clause types.Clause) string {
	parts := make([]string, len(clause))
	for i, lit := range clause {
		parts[i] = fmt.Sprintf("%s (%s)", lit.DisplayName, lit.Op)
	}
	return strings.Join(parts, " AND ")
}

// escapeCell keeps pipe-table cells stable even if source text contains
// separators or newlines.
func escapeCell(value string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"|", `\|`,
		"\r", " ",
		"\n", " ",
	)
	return r.Replace(value)
}

// cellToken is the table cell for a variable inside one clause: the
// operation's token, or "" when the clause does not constrain the variable.
func cellToken(clause types.Clause, variableID string) string {
	for _, lit := range clause {
		if lit.ID == variableID {
			return lit.Op.Token()
		}
	}
	return ""
}

// SectionMarkdown renders the per-section wiki page: header metadata, the
// DNF as a rule list, and a variable x rule table.
func SectionMarkdown(section types.SectionResult, activity string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s\n\n", activity, section.SheetName)
	fmt.Fprintf(&b, "**Goal:** %s\n", section.Key.Goal)
	fmt.Fprintf(&b, "**Type:** %s\n\n", section.Key.TypeLabel)
	fmt.Fprintf(&b, "**Formula IDs:** %s\n", section.FormulaIDs)
	fmt.Fprintf(&b, "**Formula Display:** %s\n\n", section.FormulaDisplay)

	b.WriteString("## DNF\n")
	if len(section.DNF) == 0 {
		b.WriteString("- (unsatisfiable)\n")
	} else {
		for i, clause := range section.DNF {
			fmt.Fprintf(&b, "- Alignment Rule %d: %s\n", i+1, ClauseText(clause))
		}
	}
	b.WriteString("\n")

	header := []string{"ID", "Technical name", "Question text"}
	for i := range section.DNF {
		header = append(header, fmt.Sprintf("Alignment Rule %d", i+1))
	}
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")

	for _, variable := range section.Variables {
		row := []string{
			escapeCell(variable.ID),
			escapeCell(variable.TechnicalName),
			escapeCell(variable.QuestionText),
		}
		for _, clause := range section.DNF {
			row = append(row, escapeCell(cellToken(clause, variable.ID)))
		}
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	return b.String()
}

// WriteSectionMarkdown writes the section page under folder as
// "<sheet name>.md". Sections without a sheet name (failures) are skipped.
func WriteSectionMarkdown(folder string, section types.SectionResult, activity string) error {
	if section.Status != types.StatusOK || section.SheetName == "" {
		return nil
	}
	path := filepath.Join(folder, section.SheetName+".md")
	return os.WriteFile(path, []byte(SectionMarkdown(section, activity)), 0o644)
}
