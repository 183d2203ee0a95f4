// Package lookup translates flat, string-keyed filter and order expressions
// into predicates plus the joins needed to reach their columns.
//
// A lookup key is a double-underscore-delimited path: every token but the
// last must resolve to a relationship on the entity reached so far, and the
// last token resolves to a column (defaulting to equality) or to a registered
// operator suffix applied to the preceding column:
//
//	blog__name__exact = "Acme"
//	id__in            = []int{1, 2, 3}
//	pub_date__year    = 2008
package lookup

import (
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/pkg/errors"

	"github.com/krew-solutions/queryset-go/queryset/predicate"
	"github.com/krew-solutions/queryset-go/queryset/schema"
)

const pathDelimiter = "__"

// Join records one relationship traversal required before a terminal column
// can be referenced. Joins are applied in traversal order; the alias chain
// makes repeated traversals of the same relationship across independent
// lookup entries collapse naturally at the statement level.
type Join struct {
	Rel         *schema.Relationship
	Alias       string
	ParentAlias string
}

// Lookup is the translation of one key=value entry: a predicate over the
// terminal column and the joins discovered on the way there.
type Lookup struct {
	Predicate predicate.Visitable
	Joins     []Join
}

// Translate consumes one path__op=value entry against base. When negate is
// true the built predicate is inverted as a whole.
func Translate(base *schema.Entity, key string, value any, negate bool) (Lookup, error) {
	walk := newWalk(base)
	var pred predicate.Visitable

	for _, token := range strings.Split(key, pathDelimiter) {
		switch {
		case pred != nil:
			return Lookup{}, errors.Wrapf(ErrTrailingTokens, "token %q in %q", token, key)

		case walk.column == nil:
			if err := walk.step(token); err != nil {
				return Lookup{}, err
			}

		default:
			ctor, ok := Operator(token)
			if !ok {
				return Lookup{}, errors.Wrapf(ErrUnknownLookupOperator, "token %q in %q", token, key)
			}
			p, err := ctor(walk.columnNode(), value)
			if err != nil {
				return Lookup{}, err
			}
			pred = p
			walk.column = nil
		}
	}

	if pred == nil {
		if walk.column == nil {
			return Lookup{}, errors.Wrapf(ErrAmbiguousLookupTarget, "path %q", key)
		}
		pred = predicate.Equal(walk.columnNode(), predicate.Value(value))
	}
	if negate {
		pred = predicate.Not(pred)
	}
	return Lookup{Predicate: pred, Joins: walk.joins}, nil
}

// pathWalk holds the structured loop state of a token walk: the join target
// currently being resolved against and the column cell, initially empty.
type pathWalk struct {
	base      *schema.Entity
	target    *schema.Entity
	alias     string
	column    *schema.Column
	colQual   string
	joins     []Join
}

func newWalk(base *schema.Entity) *pathWalk {
	return &pathWalk{base: base, target: base, alias: base.Table()}
}

// step resolves one token at the current join point. A relationship registers
// a join and redirects resolution to its target; a column fills the column cell.
func (w *pathWalk) step(token string) error {
	d, err := w.target.Resolve(token)
	if err != nil {
		return err
	}
	switch d := d.(type) {
	case *schema.Relationship:
		j := Join{Rel: d, Alias: w.nextAlias(d), ParentAlias: w.alias}
		w.joins = append(w.joins, j)
		w.target = d.Target()
		w.alias = j.Alias
	case *schema.Column:
		w.column = d
		w.colQual = w.alias
	}
	return nil
}

func (w *pathWalk) columnNode() predicate.ColumnNode {
	return predicate.Col(w.column, w.colQual)
}

// nextAlias derives a deterministic alias for the join target. To-many
// relationship names are singularized, and nested traversals chain onto the
// parent alias.
func (w *pathWalk) nextAlias(rel *schema.Relationship) string {
	name := rel.Name()
	if rel.Plural() {
		name = inflection.Singular(name)
	}
	if w.alias == w.base.Table() {
		return name
	}
	return w.alias + "_" + name
}
