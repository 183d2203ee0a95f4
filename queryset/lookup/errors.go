package lookup

import "errors"

// Every malformed lookup surfaces one of these at the point of detection.
// Nothing degrades to "no filter applied".
var (
	// ErrUnknownLookupOperator reports a trailing token after a resolved
	// column that names no registered operator.
	ErrUnknownLookupOperator = errors.New("lookup: unknown lookup operator")

	// ErrAmbiguousLookupTarget reports a filter path that ended on a
	// relationship with no terminal column and no operator.
	ErrAmbiguousLookupTarget = errors.New("lookup: tried to filter by table, column expected")

	// ErrAmbiguousOrderTarget reports an order path that ended on a
	// relationship with no terminal column.
	ErrAmbiguousOrderTarget = errors.New("lookup: tried to order by table, column expected")

	// ErrTrailingTokens reports path tokens left over after an operator
	// already produced a predicate, or after an order path reached its column.
	ErrTrailingTokens = errors.New("lookup: trailing tokens after terminal column")

	// ErrInvalidDepthOption reports a select-related depth other than unset or 1.
	ErrInvalidDepthOption = errors.New("lookup: depth can only be 1 or unset")

	// ErrUnexpectedOption reports an unrecognized select-related option key.
	ErrUnexpectedOption = errors.New("lookup: unexpected option")

	// ErrBadOperatorValue reports a lookup value the operator cannot accept,
	// such as a range without exactly two bounds.
	ErrBadOperatorValue = errors.New("lookup: bad operator value")
)
