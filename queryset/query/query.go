// Package query builds relational queries incrementally. Every call returns a
// new Query value with accumulated predicates, joins, ordering and eager-load
// directives; no call mutates its receiver, so sibling queries derived from
// one base may be built concurrently.
package query

import (
	"github.com/pkg/errors"

	"github.com/krew-solutions/queryset-go/queryset/lookup"
	"github.com/krew-solutions/queryset-go/queryset/predicate"
	"github.com/krew-solutions/queryset-go/queryset/schema"
)

type Query struct {
	base       *schema.Entity
	predicates []predicate.Visitable
	joins      []lookup.Join
	orderings  []lookup.OrderKey
	eager      []lookup.EagerLoad
}

// New creates an empty query over base.
func New(base *schema.Entity) Query {
	return Query{base: base}
}

func (q Query) Base() *schema.Entity {
	return q.base
}

// Predicates returns the accumulated predicates. They are conjoined (AND)
// when the query is compiled.
func (q Query) Predicates() []predicate.Visitable {
	return copySlice(q.predicates)
}

// Joins returns the accumulated joins in application order. Entries from
// independent lookups are not deduplicated here; the statement composer
// collapses duplicates by alias.
func (q Query) Joins() []lookup.Join {
	return copySlice(q.joins)
}

func (q Query) Orderings() []lookup.OrderKey {
	return copySlice(q.orderings)
}

func (q Query) EagerLoads() []lookup.EagerLoad {
	return copySlice(q.eager)
}

// FilterBy translates each keyword lookup and ANDs the resulting predicates
// into a derived query. Each entry starts path resolution from the base
// entity again, so join scopes never leak between entries.
func (q Query) FilterBy(lookups map[string]any) (Query, error) {
	return q.filterOrExclude(lookups, false)
}

// ExcludeBy is FilterBy with every built predicate negated as a whole.
func (q Query) ExcludeBy(lookups map[string]any) (Query, error) {
	return q.filterOrExclude(lookups, true)
}

func (q Query) filterOrExclude(lookups map[string]any, negate bool) (Query, error) {
	next := q.clone()
	for key, value := range lookups {
		l, err := lookup.Translate(q.base, key, value, negate)
		if err != nil {
			return Query{}, err
		}
		next.joins = append(next.joins, l.Joins...)
		next.predicates = append(next.predicates, l.Predicate)
	}
	return next, nil
}

// OrderBy appends ordering terms. String terms are parsed as sign-prefixed
// lookup paths; lookup.OrderKey terms pass through unchanged. Joins
// discovered across all terms are applied once, after the ordering clause,
// unique by alias in first-discovery order.
func (q Query) OrderBy(terms ...any) (Query, error) {
	next := q.clone()
	var joins []lookup.Join
	seen := make(map[string]bool)
	for _, term := range terms {
		switch term := term.(type) {
		case string:
			key, termJoins, err := lookup.TranslateOrder(q.base, term)
			if err != nil {
				return Query{}, err
			}
			next.orderings = append(next.orderings, key)
			for _, j := range termJoins {
				if !seen[j.Alias] {
					seen[j.Alias] = true
					joins = append(joins, j)
				}
			}
		case lookup.OrderKey:
			next.orderings = append(next.orderings, term)
		default:
			return Query{}, errors.Errorf("order_by: unsupported term type %T", term)
		}
	}
	next.joins = append(next.joins, joins...)
	return next, nil
}

// SelectRelated attaches an eager-load directive. It has no join or
// predicate side effects; the directive is honored at compile time.
func (q Query) SelectRelated(paths []string, options lookup.Options) (Query, error) {
	plan, err := lookup.PlanRelated(paths, options)
	if err != nil {
		return Query{}, err
	}
	next := q.clone()
	next.eager = append(next.eager, plan)
	return next, nil
}

func (q Query) clone() Query {
	return Query{
		base:       q.base,
		predicates: copySlice(q.predicates),
		joins:      copySlice(q.joins),
		orderings:  copySlice(q.orderings),
		eager:      copySlice(q.eager),
	}
}

func copySlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
