package postgres

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/queryset-go/queryset/lookup"
	"github.com/krew-solutions/queryset-go/queryset/query"
)

func compiled(t *testing.T, q query.Query, err error) Statement {
	t.Helper()
	require.NoError(t, err)
	stmt, err := CompileSelect(q)
	require.NoError(t, err)
	return stmt
}

func TestCompileSelectSimpleFilter(t *testing.T) {
	post, _, _ := blogSchema()
	q, err := query.New(post).FilterBy(map[string]any{"title__exact": "Go"})
	stmt := compiled(t, q, err)

	g := goldie.New(t)
	g.Assert(t, "simple_filter", []byte(stmt.SQL+"\n"))
	assert.Equal(t, []any{"Go"}, stmt.Args)
}

func TestCompileSelectJoinFilterOrder(t *testing.T) {
	post, _, _ := blogSchema()
	q, err := query.New(post).FilterBy(map[string]any{"blog__name__exact": "Acme"})
	require.NoError(t, err)
	q, err = q.OrderBy("-blog__name")
	stmt := compiled(t, q, err)

	g := goldie.New(t)
	g.Assert(t, "join_filter_order", []byte(stmt.SQL+"\n"))
	assert.Equal(t, []any{"Acme"}, stmt.Args)
}

func TestCompileSelectExclude(t *testing.T) {
	post, _, _ := blogSchema()
	q, err := query.New(post).ExcludeBy(map[string]any{"id__exact": 42})
	stmt := compiled(t, q, err)

	g := goldie.New(t)
	g.Assert(t, "exclude", []byte(stmt.SQL+"\n"))
	assert.Equal(t, []any{42}, stmt.Args)
}

func TestCompileSelectChainedFiltersRenumberPlaceholders(t *testing.T) {
	post, _, _ := blogSchema()
	q, err := query.New(post).FilterBy(map[string]any{"pub_date__isnull": false})
	require.NoError(t, err)
	q, err = q.FilterBy(map[string]any{"id__in": []int{1, 2}})
	stmt := compiled(t, q, err)

	g := goldie.New(t)
	g.Assert(t, "chained_filters", []byte(stmt.SQL+"\n"))
	assert.Equal(t, []any{1, 2}, stmt.Args)
}

func TestCompileSelectToManyTraversal(t *testing.T) {
	post, _, _ := blogSchema()
	q, err := query.New(post).FilterBy(map[string]any{"comments__body__contains": "go"})
	stmt := compiled(t, q, err)

	g := goldie.New(t)
	g.Assert(t, "to_many_filter", []byte(stmt.SQL+"\n"))
	assert.Equal(t, []any{"%go%"}, stmt.Args)
}

func TestCompileSelectEagerShallow(t *testing.T) {
	post, _, _ := blogSchema()
	q, err := query.New(post).SelectRelated([]string{"blog"}, lookup.Options{"depth": 1})
	stmt := compiled(t, q, err)

	g := goldie.New(t)
	g.Assert(t, "eager_shallow", []byte(stmt.SQL+"\n"))

	// Eager selections carry enough routing data to scan rows back.
	require.Len(t, stmt.Selections, 5)
	assert.True(t, stmt.Selections[3].Eager)
	assert.Equal(t, "blog", stmt.Selections[3].Alias)
}

func TestCompileSelectEagerFullNested(t *testing.T) {
	_, _, comment := blogSchema()
	q, err := query.New(comment).SelectRelated([]string{"post__blog"}, nil)
	stmt := compiled(t, q, err)

	g := goldie.New(t)
	g.Assert(t, "eager_full_nested", []byte(stmt.SQL+"\n"))
}

func TestCompileSelectEagerJoinCollapsesWithFilterJoin(t *testing.T) {
	post, _, _ := blogSchema()
	q, err := query.New(post).FilterBy(map[string]any{"blog__name__exact": "Acme"})
	require.NoError(t, err)
	q, err = q.SelectRelated([]string{"blog"}, lookup.Options{"depth": 1})
	stmt := compiled(t, q, err)

	g := goldie.New(t)
	g.Assert(t, "eager_collapsed", []byte(stmt.SQL+"\n"))
}

func TestCompileSelectEagerPathEndingOnColumnFails(t *testing.T) {
	post, _, _ := blogSchema()
	q, err := query.New(post).SelectRelated([]string{"blog__name"}, nil)
	require.NoError(t, err)

	_, err = CompileSelect(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relationship expected")
}
