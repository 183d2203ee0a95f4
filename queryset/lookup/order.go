package lookup

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/queryset-go/queryset/predicate"
	"github.com/krew-solutions/queryset-go/queryset/schema"
)

// OrderKey is a resolved column plus a direction. Ascending is the default;
// a leading "-" on the term flips it.
type OrderKey struct {
	Column     predicate.ColumnNode
	Descending bool
}

// TranslateOrder parses one order-by term: an optional leading +/- sign, then
// a __-delimited path walked like a filter path except that no operator
// suffix is recognized. The final token must resolve to a column.
func TranslateOrder(base *schema.Entity, term string) (OrderKey, []Join, error) {
	desc := false
	if len(term) > 0 && (term[0] == '+' || term[0] == '-') {
		desc = term[0] == '-'
		term = term[1:]
	}

	walk := newWalk(base)
	for _, token := range strings.Split(term, pathDelimiter) {
		if walk.column != nil {
			return OrderKey{}, nil, errors.Wrapf(ErrTrailingTokens, "token %q in order term %q", token, term)
		}
		if err := walk.step(token); err != nil {
			return OrderKey{}, nil, err
		}
	}
	if walk.column == nil {
		return OrderKey{}, nil, errors.Wrapf(ErrAmbiguousOrderTarget, "order term %q", term)
	}
	return OrderKey{Column: walk.columnNode(), Descending: desc}, walk.joins, nil
}
