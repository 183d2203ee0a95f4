package predicate

import "github.com/krew-solutions/queryset-go/queryset/schema"

type Associativity string

const (
	LeftAssociative  Associativity = "LEFT"
	RightAssociative Associativity = "RIGHT"
	NonAssociative   Associativity = "NON"
)

type Operable interface {
	Associativity() Associativity
	Operator() Operator
}

type Visitable interface {
	Accept(Visitor) error
}

type Visitor interface {
	VisitColumn(ColumnNode) error
	VisitValue(ValueNode) error
	VisitInfix(InfixNode) error
	VisitPrefix(PrefixNode) error
	VisitPostfix(PostfixNode) error
	VisitIn(InNode) error
	VisitBetween(BetweenNode) error
	VisitExtract(ExtractNode) error
}

// Col references a resolved column at a given join point. Qualifier is the
// table or join alias the column must be read through.
func Col(column *schema.Column, qualifier string) ColumnNode {
	return ColumnNode{column: column, qualifier: qualifier}
}

type ColumnNode struct {
	column    *schema.Column
	qualifier string
}

func (n ColumnNode) Column() *schema.Column {
	return n.column
}

func (n ColumnNode) Qualifier() string {
	return n.qualifier
}

func (n ColumnNode) Accept(v Visitor) error {
	return v.VisitColumn(n)
}

func Value(value any) ValueNode {
	return ValueNode{value: value}
}

type ValueNode struct {
	value any
}

func (n ValueNode) Value() any {
	return n.value
}

func (n ValueNode) Accept(v Visitor) error {
	return v.VisitValue(n)
}

func Not(operand Visitable) PrefixNode {
	return PrefixNode{
		operator:      OperatorNot,
		operand:       operand,
		associativity: RightAssociative,
	}
}

type PrefixNode struct {
	operator      Operator
	operand       Visitable
	associativity Associativity
}

func (n PrefixNode) Operand() Visitable {
	return n.operand
}

func (n PrefixNode) Operator() Operator {
	return n.operator
}

func (n PrefixNode) Associativity() Associativity {
	return n.associativity
}

func (n PrefixNode) Accept(v Visitor) error {
	return v.VisitPrefix(n)
}

func Equal(left, right Visitable) InfixNode {
	return infix(left, OperatorEq, right, NonAssociative)
}

func NotEqual(left, right Visitable) InfixNode {
	return infix(left, OperatorNe, right, NonAssociative)
}

func GreaterThan(left, right Visitable) InfixNode {
	return infix(left, OperatorGt, right, NonAssociative)
}

func GreaterThanEqual(left, right Visitable) InfixNode {
	return infix(left, OperatorGte, right, NonAssociative)
}

func LessThan(left, right Visitable) InfixNode {
	return infix(left, OperatorLt, right, NonAssociative)
}

func LessThanEqual(left, right Visitable) InfixNode {
	return infix(left, OperatorLte, right, NonAssociative)
}

func Like(left, right Visitable) InfixNode {
	return infix(left, OperatorLike, right, NonAssociative)
}

func ILike(left, right Visitable) InfixNode {
	return infix(left, OperatorILike, right, NonAssociative)
}

func And(left Visitable, rights ...Visitable) InfixNode {
	left, right := foldRights(And, left, rights...)
	return infix(left, OperatorAnd, right, LeftAssociative)
}

func Or(left Visitable, rights ...Visitable) InfixNode {
	left, right := foldRights(Or, left, rights...)
	return infix(left, OperatorOr, right, LeftAssociative)
}

func foldRights(
	aCallable func(Visitable, ...Visitable) InfixNode,
	aLeft Visitable,
	aRights ...Visitable,
) (left, right Visitable) {
	for len(aRights) > 1 {
		aLeft = aCallable(aLeft, aRights[0])
		aRights = aRights[1:]
	}
	return aLeft, aRights[0]
}

func infix(left Visitable, operator Operator, right Visitable, associativity Associativity) InfixNode {
	return InfixNode{
		left:          left,
		operator:      operator,
		right:         right,
		associativity: associativity,
	}
}

type InfixNode struct {
	left          Visitable
	operator      Operator
	right         Visitable
	associativity Associativity
}

func (n InfixNode) Left() Visitable {
	return n.left
}

func (n InfixNode) Operator() Operator {
	return n.operator
}

func (n InfixNode) Right() Visitable {
	return n.right
}

func (n InfixNode) Associativity() Associativity {
	return n.associativity
}

func (n InfixNode) Accept(v Visitor) error {
	return v.VisitInfix(n)
}

func IsNull(operand Visitable) PostfixNode {
	return PostfixNode{
		operand:       operand,
		operator:      OperatorIsNull,
		associativity: NonAssociative,
	}
}

func IsNotNull(operand Visitable) PostfixNode {
	return PostfixNode{
		operand:       operand,
		operator:      OperatorIsNotNull,
		associativity: NonAssociative,
	}
}

type PostfixNode struct {
	operand       Visitable
	operator      Operator
	associativity Associativity
}

func (n PostfixNode) Operand() Visitable {
	return n.operand
}

func (n PostfixNode) Operator() Operator {
	return n.operator
}

func (n PostfixNode) Associativity() Associativity {
	return n.associativity
}

func (n PostfixNode) Accept(v Visitor) error {
	return v.VisitPostfix(n)
}

// In is membership of operand in values.
func In(operand Visitable, values ...Visitable) InNode {
	return InNode{operand: operand, values: values}
}

type InNode struct {
	operand Visitable
	values  []Visitable
}

func (n InNode) Operand() Visitable {
	return n.operand
}

func (n InNode) Values() []Visitable {
	return n.values
}

func (n InNode) Operator() Operator {
	return OperatorIn
}

func (n InNode) Associativity() Associativity {
	return NonAssociative
}

func (n InNode) Accept(v Visitor) error {
	return v.VisitIn(n)
}

// Between is the inclusive range check: lower <= operand <= upper.
func Between(operand, lower, upper Visitable) BetweenNode {
	return BetweenNode{operand: operand, lower: lower, upper: upper}
}

type BetweenNode struct {
	operand Visitable
	lower   Visitable
	upper   Visitable
}

func (n BetweenNode) Operand() Visitable {
	return n.operand
}

func (n BetweenNode) Lower() Visitable {
	return n.lower
}

func (n BetweenNode) Upper() Visitable {
	return n.upper
}

func (n BetweenNode) Operator() Operator {
	return OperatorBetween
}

func (n BetweenNode) Associativity() Associativity {
	return NonAssociative
}

func (n BetweenNode) Accept(v Visitor) error {
	return v.VisitBetween(n)
}

// DatePart names a field extractable from a date/timestamp column.
type DatePart string

const (
	PartYear  DatePart = "YEAR"
	PartMonth DatePart = "MONTH"
	PartDay   DatePart = "DAY"
)

// Extract pulls the named date part out of operand, as EXTRACT does in SQL.
func Extract(part DatePart, operand Visitable) ExtractNode {
	return ExtractNode{part: part, operand: operand}
}

type ExtractNode struct {
	part    DatePart
	operand Visitable
}

func (n ExtractNode) Part() DatePart {
	return n.part
}

func (n ExtractNode) Operand() Visitable {
	return n.operand
}

func (n ExtractNode) Accept(v Visitor) error {
	return v.VisitExtract(n)
}
