package dnf

import (
	"sort"
	"strconv"
	"strings"

	"github.com/eligrid/eligrid/internal/types"
)

// opOrder fixes the tie-break priority between operations on the same
// identifier.
var opOrder = map[types.LiteralOp]int{
	types.OpEq0:  0,
	types.OpEq1:  1,
	types.OpNeq1: 2,
}

// Normalize canonicalizes a DNF clause list:
//
//   - within a clause, keep one literal per identifier (first occurrence's
//     operation wins); a clause where the same identifier appears with two
//     different operations is a contradiction and is dropped;
//   - literals sort by a natural case-insensitive key on the identifier,
//     operation as tie-break (EQ0 < EQ1 < NEQ1);
//   - clauses with a duplicate (identifier, operation) signature are dropped;
//   - the clause list sorts lexicographically by the literals' keys.
//
// The ordering is total, so the same input always yields byte-identical
// output.
func Normalize(clauses []types.Clause) []types.Clause {
	normalized := make([]types.Clause, 0, len(clauses))
	seen := map[string]bool{}

	for _, clause := range clauses {
		byID := map[string]types.Literal{}
		order := make([]string, 0, len(clause))
		contradiction := false
		for _, lit := range clause {
			existing, ok := byID[lit.ID]
			if ok {
				if existing.Op != lit.Op {
					contradiction = true
					break
				}
				continue
			}
			byID[lit.ID] = lit
			order = append(order, lit.ID)
		}
		if contradiction {
			continue
		}

		ordered := make(types.Clause, 0, len(order))
		for _, id := range order {
			ordered = append(ordered, byID[id])
		}
		sort.SliceStable(ordered, func(i, j int) bool {
			return literalLess(ordered[i], ordered[j])
		})

		sig := signature(ordered)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		normalized = append(normalized, ordered)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return clauseLess(normalized[i], normalized[j])
	})
	return normalized
}

func signature(clause types.Clause) string {
	var b strings.Builder
	for _, lit := range clause {
		b.WriteString(lit.ID)
		b.WriteByte(':')
		b.WriteString(string(lit.Op))
		b.WriteByte('|')
	}
	return b.String()
}

func literalLess(a, b types.Literal) bool {
	if c := naturalCompare(a.ID, b.ID); c != 0 {
		return c < 0
	}
	return opOrder[a.Op] < opOrder[b.Op]
}

func clauseLess(a, b types.Clause) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := naturalCompare(a[i].ID, b[i].ID); c != 0 {
			return c < 0
		}
		if d := opOrder[a[i].Op] - opOrder[b[i].Op]; d != 0 {
			return d < 0
		}
	}
	return len(a) < len(b)
}

// naturalCompare orders strings case-insensitively with embedded digit runs
// compared numerically, so "A2" sorts before "A10".
func naturalCompare(a, b string) int {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ar, br := a[ai], b[bi]
		if isDigit(ar) && isDigit(br) {
			an, aEnd := digitRun(a, ai)
			bn, bEnd := digitRun(b, bi)
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
			ai, bi = aEnd, bEnd
			continue
		}
		al, bl := lower(ar), lower(br)
		if al != bl {
			if al < bl {
				return -1
			}
			return 1
		}
		ai++
		bi++
	}
	switch {
	case ai < len(a):
		return 1
	case bi < len(b):
		return -1
	default:
		return 0
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func digitRun(s string, start int) (uint64, int) {
	end := start
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	// Digit runs in variable identifiers fit comfortably in 64 bits; saturate
	// rather than fail if one ever does not.
	n, err := strconv.ParseUint(strings.TrimLeft(s[start:end], "0"), 10, 64)
	if err != nil {
		if end-start > 0 && strings.Trim(s[start:end], "0") == "" {
			return 0, end
		}
		n = ^uint64(0)
	}
	return n, end
}
