// Package formatter renders parse results and run summaries for the terminal.
package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/eligrid/eligrid/export"
	"github.com/eligrid/eligrid/internal/types"
)

var (
	headerStyle  = color.New(color.Bold)
	ruleNumStyle = color.New(color.FgCyan)
	errorStyle   = color.New(color.FgRed, color.Bold)
	pathStyle    = color.New(color.FgCyan)
	successStyle = color.New(color.FgGreen)
	failureStyle = color.New(color.FgRed, color.Bold)
	mutedStyle   = color.New(color.FgHiBlack)
)

// FormatDNF renders a normalized DNF as a numbered rule list followed by the
// variables it mentions.
func FormatDNF(clauses []types.Clause, variables []types.Literal) string {
	var builder strings.Builder

	builder.WriteString(headerStyle.Sprint("DNF rules:") + "\n")
	if len(clauses) == 0 {
		builder.WriteString(mutedStyle.Sprint("  (unsatisfiable)") + "\n")
	}
	for i, clause := range clauses {
		builder.WriteString(ruleNumStyle.Sprintf("  %d. ", i+1))
		builder.WriteString(export.ClauseText(clause))
		builder.WriteString("\n")
	}

	builder.WriteString(headerStyle.Sprint("Variables:") + "\n")
	for _, v := range variables {
		builder.WriteString("  " + v.ID)
		if v.QuestionText != "" {
			builder.WriteString(mutedStyle.Sprintf("  %s", v.QuestionText))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// FormatParseError renders a formula error with the error style.
func FormatParseError(err error) string {
	return errorStyle.Sprint("parse error: ") + err.Error() + "\n"
}

// FormatRunSummary renders the closing summary of a pipeline run.
func FormatRunSummary(runID, runDir string, total, succeeded, failed int) string {
	var builder strings.Builder

	builder.WriteString(headerStyle.Sprintf("Run %s", runID) + "\n")
	builder.WriteString("Output: " + pathStyle.Sprint(runDir) + "\n")
	builder.WriteString(fmt.Sprintf("Sections: %d\n", total))
	builder.WriteString(successStyle.Sprintf("  succeeded: %d", succeeded) + "\n")
	if failed > 0 {
		builder.WriteString(failureStyle.Sprintf("  failed:    %d", failed) + "\n")
	}
	return builder.String()
}
