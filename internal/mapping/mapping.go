// Package mapping loads variable metadata (technical name, question text)
// from tab-separated files so exports can label variables with something more
// readable than their raw IDs.
package mapping

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Meta is the extra metadata known about one variable ID.
type Meta struct {
	TechnicalName string
	QuestionText  string
}

// Error reports an unreadable or unusable mapping file.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("variable mapping %s: %s", e.Path, e.Reason)
}

// Table maps variable IDs to metadata.
type Table map[string]Meta

var (
	idPattern     = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	idSuffixRe    = regexp.MustCompile(`^(.*)_\d+$`)
	headerID      = map[string]bool{"id": true, "variable id": true, "variable_id": true}
	headerTech    = map[string]bool{"technical name": true, "technical_name": true}
	headerQuestion = map[string]bool{"question text": true, "question_text": true}
)

// Load reads a UTF-8, tab-delimited mapping file. Columns (1-based): 1=ID,
// 3=technical name, 9=question text; short rows are padded. A header row is
// skipped. Duplicate IDs keep the last row and are returned for the caller to
// warn about.
func Load(path string) (Table, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &Error{Path: path, Reason: fmt.Sprintf("could not read file: %v", err)}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, &Error{Path: path, Reason: fmt.Sprintf("could not parse TSV: %v", err)}
	}

	table := Table{}
	var duplicates []string
	seenDup := map[string]bool{}

	for i, row := range records {
		for len(row) < 9 {
			row = append(row, "")
		}
		id := strings.TrimSpace(row[0])
		tech := strings.TrimSpace(row[2])
		question := strings.TrimSpace(row[8])

		if i == 0 && (isHeaderRow(id, tech, question) || (id != "" && !idPattern.MatchString(id))) {
			continue
		}
		if id == "" {
			continue
		}
		if _, dup := table[id]; dup && !seenDup[id] {
			seenDup[id] = true
			duplicates = append(duplicates, id)
		}
		table[id] = Meta{TechnicalName: tech, QuestionText: question}
	}

	return table, duplicates, nil
}

func isHeaderRow(id, tech, question string) bool {
	return headerID[strings.ToLower(id)] ||
		headerTech[strings.ToLower(tech)] ||
		headerQuestion[strings.ToLower(question)]
}

// NormalizeID strips a trailing "_<digits>" suffix, the convention used when
// one logical variable is instantiated per section.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if m := idSuffixRe.FindStringSubmatch(id); m != nil {
		return m[1]
	}
	return id
}

// Lookup finds metadata for an ID, falling back to the suffix-stripped form.
func (t Table) Lookup(id string) (Meta, bool) {
	id = strings.TrimSpace(id)
	if meta, ok := t[id]; ok {
		return meta, true
	}
	meta, ok := t[NormalizeID(id)]
	return meta, ok
}
