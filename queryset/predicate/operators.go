package predicate

type Operator string

const (
	// Comparison

	OperatorEq  Operator = "="
	OperatorNe  Operator = "!="
	OperatorGt  Operator = ">"
	OperatorLt  Operator = "<"
	OperatorGte Operator = ">="
	OperatorLte Operator = "<="

	// Pattern matching

	OperatorLike  Operator = "LIKE"
	OperatorILike Operator = "ILIKE"

	// Set / range membership

	OperatorIn      Operator = "IN"
	OperatorBetween Operator = "BETWEEN"

	// Logical

	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
	OperatorNot Operator = "NOT"

	// Postfix

	OperatorIsNull    Operator = "IS NULL"
	OperatorIsNotNull Operator = "IS NOT NULL"
)
