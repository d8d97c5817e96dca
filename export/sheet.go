package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/eligrid/eligrid/internal/types"
)

// sheetRows renders one section as a block of CSV rows: a metadata header,
// a blank spacer, then the variable x rule truth table.
func sheetRows(section types.SectionResult, activity string) [][]string {
	rows := [][]string{
		{"Sheet", section.SheetName},
		{"Activity", activity},
		{"DNSH Goal", section.Key.Goal},
		{"Type", section.Key.TypeLabel},
		{"Formula IDs", section.FormulaIDs},
		{"Formula Display", section.FormulaDisplay},
		{},
	}

	header := []string{"ID", "Technical name", "Question text"}
	for i := range section.DNF {
		header = append(header, fmt.Sprintf("Alignment Rule %d", i+1))
	}
	rows = append(rows, header)

	for _, variable := range section.Variables {
		row := []string{variable.ID, variable.TechnicalName, variable.QuestionText}
		for _, clause := range section.DNF {
			row = append(row, cellToken(clause, variable.ID))
		}
		rows = append(rows, row)
	}

	return rows
}

// WriteWorkbook writes every successful section of one activity into a
// single CSV file, one sheet block per section separated by blank rows. When
// no section succeeded a placeholder block is written instead so the file is
// never empty.
func WriteWorkbook(path, activity string, sections []types.SectionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	wrote := false
	for _, section := range sections {
		if section.Status != types.StatusOK {
			continue
		}
		if wrote {
			if err := w.Write([]string{}); err != nil {
				return err
			}
		}
		if err := w.WriteAll(sheetRows(section, activity)); err != nil {
			return err
		}
		wrote = true
	}
	if !wrote {
		if err := w.Write([]string{"No valid sections were generated for this activity."}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
