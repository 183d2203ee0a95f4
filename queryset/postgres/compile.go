package postgres

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jinzhu/inflection"
	"github.com/pkg/errors"

	"github.com/krew-solutions/queryset-go/queryset/lookup"
	"github.com/krew-solutions/queryset-go/queryset/query"
	"github.com/krew-solutions/queryset-go/queryset/schema"
)

// Selection describes one column of a compiled statement, so row scanning
// can route values back to the owning alias and property.
type Selection struct {
	Alias    string
	Column   *schema.Column
	Eager    bool
	EagerRel *lookup.Join
}

// Statement is a fully compiled SELECT.
type Statement struct {
	SQL        string
	Args       []any
	Selections []Selection
}

// CompileSelect renders a query as one PostgreSQL SELECT: base columns,
// LEFT JOINs for every accumulated and eager-load join (deduplicated by
// alias), conjoined WHERE predicates, and the ordering clause.
func CompileSelect(q query.Query) (Statement, error) {
	base := q.Base()
	baseAlias := base.Table()

	var selections []Selection
	for _, col := range base.Columns() {
		selections = append(selections, Selection{Alias: baseAlias, Column: col})
	}

	joins := make([]lookup.Join, 0, len(q.Joins()))
	seen := make(map[string]bool)
	for _, j := range q.Joins() {
		if !seen[j.Alias] {
			seen[j.Alias] = true
			joins = append(joins, j)
		}
	}

	eagerJoins, eagerSelections, err := expandEagerLoads(base, q.EagerLoads(), seen)
	if err != nil {
		return Statement{}, err
	}
	joins = append(joins, eagerJoins...)
	selections = append(selections, eagerSelections...)

	builder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(selectList(selections)...).
		From(base.Table())

	for _, j := range joins {
		builder = builder.LeftJoin(joinClause(j))
	}

	for _, pred := range q.Predicates() {
		frag, params, err := CompilePredicate(pred, QuestionPlaceholders())
		if err != nil {
			return Statement{}, err
		}
		builder = builder.Where(sq.Expr(frag, params...))
	}

	if orderings := q.Orderings(); len(orderings) > 0 {
		parts := make([]string, len(orderings))
		for i, key := range orderings {
			part := key.Column.Qualifier() + "." + key.Column.Column().SQLName()
			if key.Descending {
				part += " DESC"
			}
			parts[i] = part
		}
		builder = builder.OrderBy(parts...)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return Statement{}, errors.Wrap(err, "compile select")
	}
	return Statement{SQL: sql, Args: args, Selections: selections}, nil
}

func selectList(selections []Selection) []string {
	cols := make([]string, len(selections))
	for i, s := range selections {
		cols[i] = s.Alias + "." + s.Column.SQLName()
	}
	return cols
}

func joinClause(j lookup.Join) string {
	target := j.Rel.Target()
	var conds []string
	for _, fk := range j.Rel.ForeignKeys() {
		conds = append(conds, fmt.Sprintf("%s.%s = %s.%s",
			j.ParentAlias, fk.OwnerColumn, j.Alias, fk.TargetColumn))
	}
	return fmt.Sprintf("%s AS %s ON %s", target.Table(), j.Alias, strings.Join(conds, " AND "))
}

// expandEagerLoads resolves eager-load directives into joins and extra
// selections. Shallow plans follow only the first path level; full plans
// follow every level.
func expandEagerLoads(base *schema.Entity, plans []lookup.EagerLoad, seen map[string]bool) ([]lookup.Join, []Selection, error) {
	var joins []lookup.Join
	var selections []Selection
	selected := make(map[string]bool)

	for _, plan := range plans {
		for _, path := range plan.Paths {
			segments := strings.Split(path, ".")
			if plan.Mode == lookup.EagerShallow {
				segments = segments[:1]
			}

			target := base
			alias := base.Table()
			for _, segment := range segments {
				d, err := target.Resolve(segment)
				if err != nil {
					return nil, nil, err
				}
				rel, ok := d.(*schema.Relationship)
				if !ok {
					return nil, nil, errors.Errorf(
						"eager path %q: %q is a column, relationship expected", path, segment)
				}
				j := lookup.Join{Rel: rel, Alias: eagerAlias(base, alias, rel), ParentAlias: alias}
				if !seen[j.Alias] {
					seen[j.Alias] = true
					joins = append(joins, j)
				}
				// A predicate may already have joined this alias; the
				// eager directive still owns its column selections.
				if !selected[j.Alias] {
					selected[j.Alias] = true
					jc := j
					for _, col := range rel.Target().Columns() {
						selections = append(selections, Selection{
							Alias:    j.Alias,
							Column:   col,
							Eager:    true,
							EagerRel: &jc,
						})
					}
				}
				target = rel.Target()
				alias = j.Alias
			}
		}
	}
	return joins, selections, nil
}

// eagerAlias mirrors the alias scheme used during lookup translation, so an
// eager join collapses with a filter join over the same path.
func eagerAlias(base *schema.Entity, parentAlias string, rel *schema.Relationship) string {
	name := rel.Name()
	if rel.Plural() {
		name = inflection.Singular(name)
	}
	if parentAlias == base.Table() {
		return name
	}
	return parentAlias + "_" + name
}
