package lookup

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/queryset-go/queryset/predicate"
)

// Constructor builds a predicate over one resolved column and a lookup value.
type Constructor func(col predicate.ColumnNode, value any) (predicate.Visitable, error)

// underscoreOperators is the fixed operator-suffix table. It is populated once
// here and never mutated, so concurrent lookups may share it without locking.
var underscoreOperators = map[string]Constructor{
	"exact": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		return predicate.Equal(col, predicate.Value(value)), nil
	},
	"iexact": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		s, err := stringValue("iexact", value)
		if err != nil {
			return nil, err
		}
		return predicate.ILike(col, predicate.Value(escapeLike(s))), nil
	},
	"gt": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		return predicate.GreaterThan(col, predicate.Value(value)), nil
	},
	"gte": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		return predicate.GreaterThanEqual(col, predicate.Value(value)), nil
	},
	"lt": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		return predicate.LessThan(col, predicate.Value(value)), nil
	},
	"lte": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		return predicate.LessThanEqual(col, predicate.Value(value)), nil
	},
	"contains": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		s, err := stringValue("contains", value)
		if err != nil {
			return nil, err
		}
		return predicate.Like(col, predicate.Value("%"+escapeLike(s)+"%")), nil
	},
	"startswith": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		s, err := stringValue("startswith", value)
		if err != nil {
			return nil, err
		}
		return predicate.Like(col, predicate.Value(escapeLike(s)+"%")), nil
	},
	"istartswith": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		s, err := stringValue("istartswith", value)
		if err != nil {
			return nil, err
		}
		return predicate.ILike(col, predicate.Value(escapeLike(s)+"%")), nil
	},
	"endswith": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		s, err := stringValue("endswith", value)
		if err != nil {
			return nil, err
		}
		return predicate.Like(col, predicate.Value("%"+escapeLike(s))), nil
	},
	"iendswith": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		s, err := stringValue("iendswith", value)
		if err != nil {
			return nil, err
		}
		return predicate.ILike(col, predicate.Value("%"+escapeLike(s))), nil
	},
	"in": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		values := toValues(value)
		nodes := make([]predicate.Visitable, len(values))
		for i, v := range values {
			nodes[i] = predicate.Value(v)
		}
		return predicate.In(col, nodes...), nil
	},
	"range": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		values := toValues(value)
		if len(values) != 2 {
			return nil, errors.Wrapf(ErrBadOperatorValue,
				"range requires exactly two bounds, got %d", len(values))
		}
		return predicate.Between(col, predicate.Value(values[0]), predicate.Value(values[1])), nil
	},
	// isnull builds a genuine IS NULL / IS NOT NULL predicate keyed off the
	// boolean value. The column is never compared against the host-language nil.
	"isnull": func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		flag, ok := value.(bool)
		if !ok {
			return nil, errors.Wrapf(ErrBadOperatorValue, "isnull requires a bool, got %T", value)
		}
		if flag {
			return predicate.IsNull(col), nil
		}
		return predicate.IsNotNull(col), nil
	},
	"year":  datePart(predicate.PartYear),
	"month": datePart(predicate.PartMonth),
	"day":   datePart(predicate.PartDay),
}

func datePart(part predicate.DatePart) Constructor {
	return func(col predicate.ColumnNode, value any) (predicate.Visitable, error) {
		return predicate.Equal(predicate.Extract(part, col), predicate.Value(value)), nil
	}
}

// Operator returns the constructor registered under name.
func Operator(name string) (Constructor, bool) {
	ctor, ok := underscoreOperators[name]
	return ctor, ok
}

func stringValue(op string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", errors.Wrapf(ErrBadOperatorValue, "%s requires a string, got %T", op, value)
	}
	return s, nil
}

// escapeLike makes a literal usable inside a LIKE pattern. PostgreSQL treats
// backslash as the default escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// toValues expands a slice or array lookup value into its elements and wraps
// any scalar into a single-element sequence.
func toValues(value any) []any {
	if value == nil {
		return []any{nil}
	}
	if vs, ok := value.([]any); ok {
		out := make([]any, len(vs))
		copy(out, vs)
		return out
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	default:
		return []any{value}
	}
}
