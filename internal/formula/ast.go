package formula

import (
	"strings"

	"github.com/eligrid/eligrid/internal/types"
)

// Expr is a node of a parsed formula. The implementations form a closed set:
// Lit, NotExpr, AndExpr, OrExpr. Consumers switch exhaustively over them.
type Expr interface {
	isExpr()
	String() string
}

// Lit wraps an atomic literal.
type Lit struct {
	Literal types.Literal
}

func (Lit) isExpr() {}
func (e Lit) String() string {
	return e.Literal.ID + ":" + string(e.Literal.Op)
}

// NotExpr negates its child.
type NotExpr struct {
	Child Expr
}

func (NotExpr) isExpr() {}
func (e NotExpr) String() string {
	return "(!" + e.Child.String() + ")"
}

// AndExpr is a conjunction.
type AndExpr struct {
	Left  Expr
	Right Expr
}

func (AndExpr) isExpr() {}
func (e AndExpr) String() string {
	return "(" + e.Left.String() + " & " + e.Right.String() + ")"
}

// OrExpr is a disjunction.
type OrExpr struct {
	Left  Expr
	Right Expr
}

func (OrExpr) isExpr() {}
func (e OrExpr) String() string {
	return "(" + e.Left.String() + " | " + e.Right.String() + ")"
}

// Constructor helpers.

// LitOf creates a literal node.
func LitOf(l types.Literal) Expr { return Lit{Literal: l} }

// Not creates a negation node.
func Not(e Expr) Expr { return NotExpr{Child: e} }

// And creates a conjunction node.
func And(left, right Expr) Expr { return AndExpr{Left: left, Right: right} }

// Or creates a disjunction node.
func Or(left, right Expr) Expr { return OrExpr{Left: left, Right: right} }

// Literals returns every literal node in the tree, left to right.
func Literals(e Expr) []types.Literal {
	var out []types.Literal
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case Lit:
			out = append(out, n.Literal)
		case NotExpr:
			walk(n.Child)
		case AndExpr:
			walk(n.Left)
			walk(n.Right)
		case OrExpr:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(e)
	return out
}

// RPN dumps the tree in postfix order, one token per element. Useful for
// asserting precedence and associativity without comparing tree shapes.
func RPN(e Expr) string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case Lit:
			out = append(out, n.Literal.ID+":"+string(n.Literal.Op))
		case NotExpr:
			walk(n.Child)
			out = append(out, "NOT")
		case AndExpr:
			walk(n.Left)
			walk(n.Right)
			out = append(out, "AND")
		case OrExpr:
			walk(n.Left)
			walk(n.Right)
			out = append(out, "OR")
		}
	}
	walk(e)
	return strings.Join(out, " ")
}
