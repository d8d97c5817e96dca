// Package dnf converts formula ASTs to disjunctive normal form and
// canonicalizes the resulting clause lists.
package dnf

import (
	"fmt"

	"github.com/eligrid/eligrid/internal/formula"
	"github.com/eligrid/eligrid/internal/types"
)

// Negate flips a literal's operation. EQ1 and NEQ1 are duals; EQ0 has no
// negation in this grammar (there is no "equals neither" concept), so
// negating it is an error rather than a silent approximation.
func Negate(l types.Literal) (types.Literal, error) {
	switch l.Op {
	case types.OpEq1:
		l.Op = types.OpNeq1
		return l, nil
	case types.OpNeq1:
		l.Op = types.OpEq1
		return l, nil
	default:
		return types.Literal{}, &formula.ParseError{
			Msg:  fmt.Sprintf("negation of literal %q is not supported", l.ID+"=0"),
			Near: l.ID,
		}
	}
}

// ToNNF pushes negations down to the literals: double negations cancel and
// NOT distributes over AND/OR via De Morgan's laws.
func ToNNF(e formula.Expr) (formula.Expr, error) {
	switch n := e.(type) {
	case formula.Lit:
		return n, nil
	case formula.NotExpr:
		switch child := n.Child.(type) {
		case formula.Lit:
			negated, err := Negate(child.Literal)
			if err != nil {
				return nil, err
			}
			return formula.LitOf(negated), nil
		case formula.NotExpr:
			return ToNNF(child.Child)
		case formula.AndExpr:
			left, err := ToNNF(formula.Not(child.Left))
			if err != nil {
				return nil, err
			}
			right, err := ToNNF(formula.Not(child.Right))
			if err != nil {
				return nil, err
			}
			return formula.Or(left, right), nil
		case formula.OrExpr:
			left, err := ToNNF(formula.Not(child.Left))
			if err != nil {
				return nil, err
			}
			right, err := ToNNF(formula.Not(child.Right))
			if err != nil {
				return nil, err
			}
			return formula.And(left, right), nil
		}
	case formula.AndExpr:
		left, err := ToNNF(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := ToNNF(n.Right)
		if err != nil {
			return nil, err
		}
		return formula.And(left, right), nil
	case formula.OrExpr:
		left, err := ToNNF(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := ToNNF(n.Right)
		if err != nil {
			return nil, err
		}
		return formula.Or(left, right), nil
	}
	return nil, fmt.Errorf("unsupported AST node %T", e)
}

// ToDNF converts an AST to a list of conjunctive clauses. OR concatenates the
// operand clause lists; AND takes their cartesian product. The product step
// can blow up exponentially with ORs nested inside ANDs, which is why callers
// cap the clause count (see the pipeline's max-rules option).
func ToDNF(e formula.Expr) ([]types.Clause, error) {
	nnf, err := ToNNF(e)
	if err != nil {
		return nil, err
	}
	return clausesOf(nnf)
}

func clausesOf(e formula.Expr) ([]types.Clause, error) {
	switch n := e.(type) {
	case formula.Lit:
		return []types.Clause{{n.Literal}}, nil
	case formula.OrExpr:
		left, err := clausesOf(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := clausesOf(n.Right)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case formula.AndExpr:
		left, err := clausesOf(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := clausesOf(n.Right)
		if err != nil {
			return nil, err
		}
		return distribute(left, right), nil
	}
	return nil, fmt.Errorf("unsupported AST node %T in NNF", e)
}

func distribute(left, right []types.Clause) []types.Clause {
	clauses := make([]types.Clause, 0, len(left)*len(right))
	for _, lc := range left {
		for _, rc := range right {
			merged := make(types.Clause, 0, len(lc)+len(rc))
			merged = append(merged, lc...)
			merged = append(merged, rc...)
			clauses = append(clauses, merged)
		}
	}
	return clauses
}
