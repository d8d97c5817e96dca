// Package pipeline turns spreadsheet-style rows into per-section normalized
// DNF results. It groups rows into sections, parses each section's ID
// formula, converts it to DNF, and enriches the variables with mapping
// metadata. A section failure is recorded on its result and never aborts the
// run.
package pipeline

import (
	"crypto/md5"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/eligrid/eligrid/internal/dnf"
	"github.com/eligrid/eligrid/internal/formula"
	"github.com/eligrid/eligrid/internal/mapping"
	"github.com/eligrid/eligrid/internal/operators"
	"github.com/eligrid/eligrid/internal/types"
)

// abbreviations maps environmental objectives (column A) to the short codes
// used in sheet names.
var abbreviations = map[string]string{
	"Climate Change Mitigation":       "CCM",
	"Climate Change Adaptation":       "CCA",
	"PollutionPrevention and Control": "PPC",
	"Water":                           "WTR",
	"Biodiversity":                    "BIO",
	"Circular Economy":                "CE",
}

// SectionError marks a failure scoped to one section.
type SectionError struct {
	Reason string
}

func (e *SectionError) Error() string { return e.Reason }

func sectionErrorf(format string, args ...any) error {
	return &SectionError{Reason: fmt.Sprintf(format, args...)}
}

// Row is one input row, keyed by its source spreadsheet column.
type Row struct {
	EnvObjective   string // A
	SectionNumber  string // B
	Activity       string // C
	Goal           string // F
	TypeLabel      string // G
	FormulaIDs     string // H
	FormulaDisplay string // I
}

// Section is one group of rows sharing a (A, C, F, H) key.
type Section struct {
	Key  types.SectionKey
	Rows []Row
}

// LoadRows reads the input CSV. The first row is a header and is skipped;
// columns are positional (A=0 ... I=8). Short rows are padded with empty
// cells.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not read input %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse input %s: %w", path, err)
	}

	var rows []Row
	for i, record := range records {
		if i == 0 {
			continue // header
		}
		for len(record) < 9 {
			record = append(record, "")
		}
		rows = append(rows, Row{
			EnvObjective:   strings.TrimSpace(record[0]),
			SectionNumber:  strings.TrimSpace(record[1]),
			Activity:       strings.TrimSpace(record[2]),
			Goal:           strings.TrimSpace(record[5]),
			TypeLabel:      strings.TrimSpace(record[6]),
			FormulaIDs:     strings.TrimSpace(record[7]),
			FormulaDisplay: strings.TrimSpace(record[8]),
		})
	}
	return rows, nil
}

// GroupRows buckets rows into sections by (A, C, F, H), preserving first-seen
// section order. The section number, type label and display formula come from
// the first row of each group.
func GroupRows(rows []Row) []Section {
	type groupKey struct{ a, c, f, h string }
	index := map[groupKey]int{}
	var sections []Section

	for _, row := range rows {
		key := groupKey{row.EnvObjective, row.Activity, row.Goal, row.FormulaIDs}
		if i, ok := index[key]; ok {
			sections[i].Rows = append(sections[i].Rows, row)
			continue
		}
		index[key] = len(sections)
		sections = append(sections, Section{
			Key: types.SectionKey{
				EnvObjective:  row.EnvObjective,
				SectionNumber: row.SectionNumber,
				Activity:      row.Activity,
				Goal:          row.Goal,
				TypeLabel:     row.TypeLabel,
				FormulaIDs:    row.FormulaIDs,
			},
			Rows: []Row{row},
		})
	}
	return sections
}

// SectionRef builds the compact section reference used in log lines: the
// cleaned key fields plus a short fingerprint so long formulas stay
// greppable.
func SectionRef(key types.SectionKey) string {
	clean := func(v string) string {
		v = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(v)
		return strings.TrimSpace(v)
	}
	a, c, f, h := clean(key.EnvObjective), clean(key.Activity), clean(key.Goal), clean(key.FormulaIDs)
	hShort := h
	if len(hShort) > 80 {
		hShort = hShort[:77] + "..."
	}
	fingerprint := fmt.Sprintf("%x", md5.Sum([]byte(a+"|"+c+"|"+f+"|"+h)))[:8]
	return fmt.Sprintf("A=%s | C=%s | F=%s | H=%s | id=%s", a, c, f, hShort, fingerprint)
}

// SheetName derives a sheet name from the objective abbreviation and the
// section number.
func SheetName(envObjective, sectionNumber string) (string, error) {
	abbrev, ok := abbreviations[envObjective]
	if !ok {
		return "", sectionErrorf("unknown environmental objective: %s", envObjective)
	}
	return abbrev + "_" + sectionNumber, nil
}

// ParseFormulaIDs parses an ID formula, returning its normalized DNF and the
// distinct variables in first-seen order. The collecting literal parser uses
// the IDs themselves as display names: column H is the source of truth.
func ParseFormulaIDs(formulaIDs string, cfg *operators.Config) ([]types.Clause, []types.Literal, error) {
	var seen []types.Literal
	collect := func(raw string) (types.Literal, error) {
		parsed, err := formula.ParseLiteral(raw, raw, cfg)
		if err != nil {
			return types.Literal{}, err
		}
		lit := types.Literal{ID: parsed.ID, DisplayName: parsed.ID, Op: parsed.Op}
		seen = append(seen, lit)
		return lit, nil
	}

	ast, err := formula.ParseWith(formulaIDs, collect, cfg)
	if err != nil {
		return nil, nil, err
	}

	clauses, err := dnf.ToDNF(ast)
	if err != nil {
		return nil, nil, err
	}
	normalized := dnf.Normalize(clauses)

	variables := make([]types.Literal, 0, len(seen))
	byID := map[string]bool{}
	for _, lit := range seen {
		if byID[lit.ID] {
			continue
		}
		byID[lit.ID] = true
		variables = append(variables, lit)
	}
	return normalized, variables, nil
}

// Options configure one pipeline run.
type Options struct {
	OperatorsPath string // "" uses the built-in table
	MappingPath   string // "" disables metadata enrichment
	MaxRules      int    // cap on normalized clauses per section
}

// Runner processes sections with shared configuration.
type Runner struct {
	cfg      *operators.Config
	mapping  mapping.Table
	maxRules int
	logger   *zap.Logger

	missingMeta     []string
	missingMetaSeen map[string]bool
}

// NewRunner loads the operator table and the optional variable mapping. A
// mapping load failure is logged and enrichment disabled; an operator table
// failure is fatal.
func NewRunner(logger *zap.Logger, opts Options) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	stage := logger.With(zap.String("stage", string(types.StageLoadOperators)))
	stage.Info("START", zap.String("path", opts.OperatorsPath))
	var cfg *operators.Config
	var err error
	if opts.OperatorsPath == "" {
		cfg = operators.Default()
	} else {
		cfg, err = operators.Load(opts.OperatorsPath)
		if err != nil {
			stage.Error("FAILED", zap.Error(err))
			return nil, err
		}
	}
	stage.Info("OK")

	r := &Runner{
		cfg:             cfg,
		maxRules:        opts.MaxRules,
		logger:          logger,
		missingMetaSeen: map[string]bool{},
	}

	if opts.MappingPath != "" {
		stage := logger.With(zap.String("stage", string(types.StageLoadMapping)))
		stage.Info("START", zap.String("path", opts.MappingPath))
		table, duplicates, err := mapping.Load(opts.MappingPath)
		if err != nil {
			// Enrichment is best-effort: fall back to ID-only output.
			stage.Error("FAILED", zap.Error(err))
		} else {
			if len(duplicates) > 0 {
				sample := duplicates
				if len(sample) > 20 {
					sample = sample[:20]
				}
				stage.Warn("DUPLICATE_ID_MAPPING",
					zap.Int("duplicates", len(duplicates)),
					zap.Strings("sample", sample))
			}
			stage.Info("OK", zap.Int("mappings", len(table)))
			r.mapping = table
		}
	}

	return r, nil
}

// Config returns the operator table the runner parses with.
func (r *Runner) Config() *operators.Config { return r.cfg }

// MissingMeta returns the variable IDs that had no mapping entry, in
// first-seen order. Empty when no mapping is loaded.
func (r *Runner) MissingMeta() []string { return r.missingMeta }

// ProcessSection runs one section through validate, sheet naming, parsing,
// the rule cap, and metadata enrichment. Failures are recorded on the result.
func (r *Runner) ProcessSection(section Section) types.SectionResult {
	key := section.Key
	ref := SectionRef(key)
	result := types.SectionResult{
		Key:            key,
		FormulaIDs:     key.FormulaIDs,
		FormulaDisplay: section.Rows[0].FormulaDisplay,
		Status:         types.StatusFailed,
	}

	fail := func(stage types.Stage, err error) types.SectionResult {
		r.stageLogger(stage, ref).Error("FAILED", zap.Error(err))
		result.Err = err.Error()
		return result
	}

	// Validate.
	stage := r.stageLogger(types.StageValidate, ref)
	stage.Info("START")
	if key.EnvObjective == "" || key.Activity == "" || key.Goal == "" || key.FormulaIDs == "" {
		return fail(types.StageValidate, sectionErrorf("missing required section identification fields"))
	}
	if key.SectionNumber == "" {
		return fail(types.StageValidate, sectionErrorf("missing section number"))
	}
	if result.FormulaDisplay == "" {
		return fail(types.StageValidate, sectionErrorf("missing display formula"))
	}
	stage.Info("OK")

	// Sheet name.
	stage = r.stageLogger(types.StageSheetName, ref)
	stage.Info("START")
	sheetName, err := SheetName(key.EnvObjective, key.SectionNumber)
	if err != nil {
		return fail(types.StageSheetName, err)
	}
	stage.Info("OK", zap.String("sheet", sheetName))

	// Parse + DNF.
	stage = r.stageLogger(types.StageParse, ref)
	stage.Info("START", zap.Int("len", len(key.FormulaIDs)))
	clauses, variables, err := ParseFormulaIDs(key.FormulaIDs, r.cfg)
	if err != nil {
		return fail(types.StageParse, err)
	}
	stage.Info("OK", zap.Int("clauses", len(clauses)), zap.Int("variables", len(variables)))

	// Rule cap: DNF distribution is the one superlinear step, so the clause
	// count is bounded here rather than downstream.
	stage = r.stageLogger(types.StageMaxRules, ref)
	stage.Info("START")
	if r.maxRules > 0 && len(clauses) > r.maxRules {
		return fail(types.StageMaxRules, sectionErrorf("DNF rule limit exceeded: %d > %d", len(clauses), r.maxRules))
	}
	stage.Info("OK")

	enriched := make([]types.Literal, 0, len(variables))
	for _, v := range variables {
		enriched = append(enriched, r.enrich(v))
	}
	sort.SliceStable(enriched, func(i, j int) bool {
		return outputVariableLess(enriched[i], enriched[j])
	})

	result.SheetName = sheetName
	result.Variables = enriched
	result.DNF = clauses
	result.Status = types.StatusOK
	result.Err = ""
	return result
}

func (r *Runner) stageLogger(stage types.Stage, section string) *zap.Logger {
	return r.logger.With(zap.String("stage", string(stage)), zap.String("section", section))
}

func (r *Runner) enrich(lit types.Literal) types.Literal {
	if r.mapping == nil {
		return lit
	}
	meta, ok := r.mapping.Lookup(lit.ID)
	if !ok {
		if !r.missingMetaSeen[lit.ID] {
			r.missingMetaSeen[lit.ID] = true
			r.missingMeta = append(r.missingMeta, lit.ID)
		}
		return lit
	}
	lit.TechnicalName = meta.TechnicalName
	lit.QuestionText = meta.QuestionText
	return lit
}

// outputVariableLess orders export rows: variables with question text first,
// by case-folded question text, then by ID.
func outputVariableLess(a, b types.Literal) bool {
	aEmpty := strings.TrimSpace(a.QuestionText) == ""
	bEmpty := strings.TrimSpace(b.QuestionText) == ""
	if aEmpty != bEmpty {
		return bEmpty
	}
	aq := strings.ToLower(strings.TrimSpace(a.QuestionText))
	bq := strings.ToLower(strings.TrimSpace(b.QuestionText))
	if aq != bq {
		return aq < bq
	}
	return strings.ToLower(a.ID) < strings.ToLower(b.ID)
}
