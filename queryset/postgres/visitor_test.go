package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/queryset-go/queryset/lookup"
	"github.com/krew-solutions/queryset-go/queryset/predicate"
	"github.com/krew-solutions/queryset-go/queryset/schema"
	"github.com/krew-solutions/queryset-go/queryset/utils/testutils"
)

func blogSchema() (post, blog, comment *schema.Entity) {
	blog = schema.NewEntity("Blog", "blogs").
		AddColumn("id", "id").
		AddColumn("name", "name").
		SetPrimaryKey("id")
	post = schema.NewEntity("Post", "posts").
		AddColumn("id", "id").
		AddColumn("title", "title").
		AddColumn("pub_date", "pub_date").
		AddToOne("blog", blog, schema.ForeignKeyPair{OwnerColumn: "blog_id", TargetColumn: "id"}).
		SetPrimaryKey("id")
	comment = schema.NewEntity("Comment", "comments").
		AddColumn("id", "id").
		AddColumn("body", "body").
		AddToOne("post", post, schema.ForeignKeyPair{OwnerColumn: "post_id", TargetColumn: "id"}).
		SetPrimaryKey("id")
	blog.AddToMany("posts", post, schema.ForeignKeyPair{OwnerColumn: "id", TargetColumn: "blog_id"})
	post.AddToMany("comments", comment, schema.ForeignKeyPair{OwnerColumn: "id", TargetColumn: "post_id"})
	return post, blog, comment
}

func translated(t *testing.T, base *schema.Entity, key string, value any, negate bool) predicate.Visitable {
	t.Helper()
	l, err := lookup.Translate(base, key, value, negate)
	require.NoError(t, err)
	return l.Predicate
}

func TestCompilePredicateFragments(t *testing.T) {
	post, _, _ := blogSchema()

	cases := []struct {
		name   string
		key    string
		value  any
		negate bool
		sql    string
		params []any
	}{
		{"exact", "title__exact", "Go", false, "posts.title = $1", []any{"Go"}},
		{"default equality", "title", "Go", false, "posts.title = $1", []any{"Go"}},
		{"gt", "id__gt", 10, false, "posts.id > $1", []any{10}},
		{"lte", "id__lte", 10, false, "posts.id <= $1", []any{10}},
		{"contains", "title__contains", "Go", false, "posts.title LIKE $1", []any{"%Go%"}},
		{"iexact", "title__iexact", "Go", false, "posts.title ILIKE $1", []any{"Go"}},
		{"istartswith", "title__istartswith", "e", false, "posts.title ILIKE $1", []any{"e%"}},
		{"iendswith", "title__iendswith", "e", false, "posts.title ILIKE $1", []any{"%e"}},
		{"in", "id__in", []int{1, 2, 3}, false, "posts.id IN ($1, $2, $3)", []any{1, 2, 3}},
		{"range", "id__range", []int{1, 9}, false, "posts.id BETWEEN $1 AND $2", []any{1, 9}},
		{"isnull true", "title__isnull", true, false, "posts.title IS NULL", nil},
		{"isnull false", "title__isnull", false, false, "posts.title IS NOT NULL", nil},
		{"year", "pub_date__year", 2008, false, "EXTRACT(YEAR FROM posts.pub_date) = $1", []any{2008}},
		{"negated exact", "title__exact", "Go", true, "NOT posts.title = $1", []any{"Go"}},
		{"negated in", "id__in", []int{1, 2}, true, "NOT posts.id IN ($1, $2)", []any{1, 2}},
		{"negated isnull", "title__isnull", true, true, "NOT posts.title IS NULL", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sql, params, err := CompilePredicate(translated(t, post, tc.key, tc.value, tc.negate))
			require.NoError(t, err)
			testutils.RequireSQLEqual(t, tc.sql, sql)
			assert.Equal(t, tc.params, params)
		})
	}
}

func TestCompilePredicateThroughJoinUsesAlias(t *testing.T) {
	post, _, _ := blogSchema()

	sql, params, err := CompilePredicate(translated(t, post, "blog__name__exact", "Acme", false))
	require.NoError(t, err)
	testutils.RequireSQLEqual(t, "blog.name = $1", sql)
	assert.Equal(t, []any{"Acme"}, params)
}

func TestCompilePredicatePrecedenceParenthesization(t *testing.T) {
	post, _, _ := blogSchema()
	title := translated(t, post, "title__exact", "a", false)
	id := translated(t, post, "id__gt", 1, false)
	date := translated(t, post, "pub_date__isnull", false, false)

	sql, _, err := CompilePredicate(predicate.And(predicate.Or(title, id), date))
	require.NoError(t, err)
	testutils.RequireSQLEqual(t,
		"(posts.title = $1 OR posts.id > $2) AND posts.pub_date IS NOT NULL", sql)

	sql, _, err = CompilePredicate(predicate.Or(predicate.And(title, id), date))
	require.NoError(t, err)
	testutils.RequireSQLEqual(t,
		"posts.title = $1 AND posts.id > $2 OR posts.pub_date IS NOT NULL", sql)
}

func TestCompilePredicateEmptyIn(t *testing.T) {
	post, _, _ := blogSchema()

	sql, params, err := CompilePredicate(translated(t, post, "id__in", []int{}, false))
	require.NoError(t, err)
	testutils.RequireSQLEqual(t, "FALSE", sql)
	assert.Empty(t, params)
}

func TestCompilePredicatePlaceholderOptions(t *testing.T) {
	post, _, _ := blogSchema()
	pred := translated(t, post, "id__range", []int{1, 9}, false)

	sql, _, err := CompilePredicate(pred, PlaceholderIndex(3))
	require.NoError(t, err)
	testutils.RequireSQLEqual(t, "posts.id BETWEEN $4 AND $5", sql)

	sql, _, err = CompilePredicate(pred, QuestionPlaceholders())
	require.NoError(t, err)
	testutils.RequireSQLEqual(t, "posts.id BETWEEN ? AND ?", sql)
}
