package types

// LiteralOp is the comparison a literal applies to its variable.
type LiteralOp string

const (
	// OpEq0 means the variable must equal 0 ("No").
	OpEq0 LiteralOp = "EQ0"
	// OpEq1 means the variable must equal 1 ("Yes").
	OpEq1 LiteralOp = "EQ1"
	// OpNeq1 means the variable must not equal 1 ("Not Yes").
	OpNeq1 LiteralOp = "NEQ1"
)

// Token renders the operation as the cell token used in truth-table exports.
func (op LiteralOp) Token() string {
	switch op {
	case OpEq1:
		return "Yes"
	case OpEq0:
		return "NO"
	case OpNeq1:
		return "Not Yes"
	default:
		return string(op)
	}
}

// Literal is an atomic proposition: a named variable compared against 0/1.
// It is an immutable value type; equality is structural.
type Literal struct {
	ID            string
	DisplayName   string
	Op            LiteralOp
	TechnicalName string
	QuestionText  string
}

// Clause is one conjunctive term of a DNF: its literals are AND-ed together.
type Clause []Literal

// SectionKey identifies one report section. Fields are named after the
// spreadsheet columns they come from (A, B, C, F, G, H).
type SectionKey struct {
	EnvObjective  string // column A
	SectionNumber string // column B
	Activity      string // column C
	Goal          string // column F
	TypeLabel     string // column G
	FormulaIDs    string // column H
}

// Section processing status values.
const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
)

// SectionResult is the outcome of processing one section: either a normalized
// DNF with its variable list, or a recorded failure.
type SectionResult struct {
	Key            SectionKey
	SheetName      string
	FormulaIDs     string
	FormulaDisplay string
	Variables      []Literal
	DNF            []Clause
	Status         string
	Err            string
}

// Stage labels one pipeline phase for structured logging.
type Stage string

const (
	StageRun            Stage = "RUN"
	StageLoadOperators  Stage = "LOAD_OPERATOR_CONFIG"
	StageLoadMapping    Stage = "LOAD_VARIABLE_MAPPING"
	StageLoadRows       Stage = "LOAD_ROWS"
	StageGroupRows      Stage = "GROUP_ROWS"
	StageValidate       Stage = "SECTION_VALIDATE"
	StageSheetName      Stage = "SECTION_SHEET_NAME"
	StageParse          Stage = "SECTION_PARSE"
	StageMaxRules       Stage = "SECTION_MAX_RULES"
	StageExportInit     Stage = "EXPORT_ACTIVITY_INIT"
	StageExportSheet    Stage = "EXPORT_SECTION_SHEET"
	StageExportSection  Stage = "EXPORT_SECTION_MARKDOWN"
	StageExportActivity Stage = "EXPORT_ACTIVITY_DOCS"
)
