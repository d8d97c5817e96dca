// Package runio handles per-run output directories and the name sanitizing
// rules shared by the exporters.
package runio

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	fileNameRe  = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	sheetNameRe = regexp.MustCompile(`[\[\]\*\?/\\:]`)
)

// maxSheetNameLen matches the spreadsheet limit the sheet names originate
// from.
const maxSheetNameLen = 31

// CreateRunDir creates a fresh per-run directory under root, named by a
// millisecond timestamp ("2006-01-02 15-04-05-000", no ":" so the name works
// on Windows shares too). On collision a "_N" suffix is appended.
func CreateRunDir(root string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}

	now := time.Now()
	base := fmt.Sprintf("%s-%03d", now.Format("2006-01-02 15-04-05"), now.Nanosecond()/1e6)

	candidate := filepath.Join(root, base)
	if err := os.Mkdir(candidate, 0o755); err == nil {
		return filepath.Abs(candidate)
	} else if !os.IsExist(err) {
		return "", err
	}

	for suffix := 1; ; suffix++ {
		candidate = filepath.Join(root, fmt.Sprintf("%s_%d", base, suffix))
		err := os.Mkdir(candidate, 0o755)
		if err == nil {
			return filepath.Abs(candidate)
		}
		if !os.IsExist(err) {
			return "", err
		}
	}
}

// SanitizeFileName replaces every run of characters outside [A-Za-z0-9._-]
// with a single underscore. An empty result falls back to "output".
func SanitizeFileName(name string) string {
	cleaned := fileNameRe.ReplaceAllString(strings.TrimSpace(name), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return "output"
	}
	return cleaned
}

// SanitizeSheetName removes the characters spreadsheets refuse in sheet
// names.
func SanitizeSheetName(name string) string {
	cleaned := sheetNameRe.ReplaceAllString(name, "")
	cleaned = strings.ReplaceAll(cleaned, "'", "")
	return strings.TrimSpace(cleaned)
}

// UniqueSheetName sanitizes and truncates name to the 31-character sheet
// limit, appending "_N" suffixes until it is not in used. The chosen name is
// recorded in used.
func UniqueSheetName(name string, used map[string]bool) string {
	trimmed := SanitizeSheetName(name)
	if len(trimmed) > maxSheetNameLen {
		trimmed = trimmed[:maxSheetNameLen]
	}
	if !used[trimmed] {
		used[trimmed] = true
		return trimmed
	}
	for suffix := 1; ; suffix++ {
		tail := fmt.Sprintf("_%d", suffix)
		head := trimmed
		if len(head)+len(tail) > maxSheetNameLen {
			head = head[:maxSheetNameLen-len(tail)]
		}
		candidate := strings.TrimRight(head+tail, " ")
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}
