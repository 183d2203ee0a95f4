// Package postgres compiles built queries and predicates into PostgreSQL
// statements. Compilation is pure: it never touches a connection.
package postgres

import (
	"fmt"
	"strconv"

	p "github.com/krew-solutions/queryset-go/queryset/predicate"
)

type PredicateVisitorOption func(*PredicateVisitor)

// PlaceholderIndex offsets the first $n placeholder, for embedding a
// fragment into a statement that already carries parameters.
func PlaceholderIndex(index int) PredicateVisitorOption {
	return func(v *PredicateVisitor) {
		v.placeholderIndex = index
	}
}

// QuestionPlaceholders emits ? markers instead of $n, for composers that
// renumber placeholders themselves.
func QuestionPlaceholders() PredicateVisitorOption {
	return func(v *PredicateVisitor) {
		v.question = true
	}
}

func NewPredicateVisitor(opts ...PredicateVisitorOption) *PredicateVisitor {
	v := &PredicateVisitor{
		precedenceMapping: make(map[string]int),
	}
	// https://www.postgresql.org/docs/14/sql-syntax-lexical.html#SQL-PRECEDENCE-TABLE
	v.setPrecedence(100, "(any other operator) LEFT")
	v.setPrecedence(90, "BETWEEN NON", "IN NON", "LIKE NON", "ILIKE NON")
	v.setPrecedence(80, "< NON", "> NON", "= NON", "<= NON", ">= NON", "!= NON")
	v.setPrecedence(70, "IS NULL NON", "IS NOT NULL NON")
	v.setPrecedence(60, "NOT RIGHT")
	v.setPrecedence(50, "AND LEFT")
	v.setPrecedence(40, "OR LEFT")
	for i := range opts {
		opts[i](v)
	}
	return v
}

// PredicateVisitor renders a predicate tree as SQL text plus positional
// parameters, parenthesizing by PostgreSQL operator precedence.
type PredicateVisitor struct {
	sql               string
	parameters        []any
	placeholderIndex  int
	question          bool
	precedence        int
	precedenceMapping map[string]int
}

func (v PredicateVisitor) nodePrecedenceKey(n p.Operable) string {
	return fmt.Sprintf("%s %s", n.Operator(), n.Associativity())
}

func (v PredicateVisitor) setPrecedence(precedence int, operators ...string) {
	for _, op := range operators {
		v.precedenceMapping[op] = precedence
	}
}

func (v *PredicateVisitor) visit(precedenceKey string, callable func() error) error {
	outerPrecedence := v.precedence
	innerPrecedence, ok := v.precedenceMapping[precedenceKey]
	if !ok {
		innerPrecedence, ok = v.precedenceMapping["(any other operator) LEFT"]
		if !ok {
			innerPrecedence = outerPrecedence
		}
	}
	v.precedence = innerPrecedence
	if innerPrecedence < outerPrecedence {
		v.sql += "("
	}
	if err := callable(); err != nil {
		return err
	}
	if innerPrecedence < outerPrecedence {
		v.sql += ")"
	}
	v.precedence = outerPrecedence
	return nil
}

func (v *PredicateVisitor) VisitColumn(n p.ColumnNode) error {
	if q := n.Qualifier(); q != "" {
		v.sql += q + "."
	}
	v.sql += n.Column().SQLName()
	return nil
}

func (v *PredicateVisitor) VisitValue(n p.ValueNode) error {
	v.parameters = append(v.parameters, n.Value())
	if v.question {
		v.sql += "?"
	} else {
		v.sql += "$" + strconv.Itoa(v.placeholderIndex+len(v.parameters))
	}
	return nil
}

func (v *PredicateVisitor) VisitInfix(n p.InfixNode) error {
	return v.visit(v.nodePrecedenceKey(n), func() error {
		if err := n.Left().Accept(v); err != nil {
			return err
		}
		v.sql += fmt.Sprintf(" %s ", n.Operator())
		return n.Right().Accept(v)
	})
}

func (v *PredicateVisitor) VisitPrefix(n p.PrefixNode) error {
	return v.visit(v.nodePrecedenceKey(n), func() error {
		v.sql += fmt.Sprintf("%s ", n.Operator())
		return n.Operand().Accept(v)
	})
}

func (v *PredicateVisitor) VisitPostfix(n p.PostfixNode) error {
	return v.visit(v.nodePrecedenceKey(n), func() error {
		if err := n.Operand().Accept(v); err != nil {
			return err
		}
		v.sql += fmt.Sprintf(" %s", n.Operator())
		return nil
	})
}

func (v *PredicateVisitor) VisitIn(n p.InNode) error {
	// Membership in an empty sequence matches nothing.
	if len(n.Values()) == 0 {
		v.sql += "FALSE"
		return nil
	}
	return v.visit(v.nodePrecedenceKey(n), func() error {
		if err := n.Operand().Accept(v); err != nil {
			return err
		}
		v.sql += " IN ("
		for i, value := range n.Values() {
			if i > 0 {
				v.sql += ", "
			}
			if err := value.Accept(v); err != nil {
				return err
			}
		}
		v.sql += ")"
		return nil
	})
}

func (v *PredicateVisitor) VisitBetween(n p.BetweenNode) error {
	return v.visit(v.nodePrecedenceKey(n), func() error {
		if err := n.Operand().Accept(v); err != nil {
			return err
		}
		v.sql += " BETWEEN "
		if err := n.Lower().Accept(v); err != nil {
			return err
		}
		v.sql += " AND "
		return n.Upper().Accept(v)
	})
}

func (v *PredicateVisitor) VisitExtract(n p.ExtractNode) error {
	v.sql += "EXTRACT(" + string(n.Part()) + " FROM "
	if err := n.Operand().Accept(v); err != nil {
		return err
	}
	v.sql += ")"
	return nil
}

func (v PredicateVisitor) Result() (sql string, params []any, err error) {
	return v.sql, v.parameters, nil
}

// CompilePredicate renders one predicate tree to SQL text plus parameters.
func CompilePredicate(exp p.Visitable, opts ...PredicateVisitorOption) (sql string, params []any, err error) {
	v := NewPredicateVisitor(opts...)
	if err := exp.Accept(v); err != nil {
		return "", nil, err
	}
	return v.Result()
}
