package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/queryset-go/queryset/lookup"
	"github.com/krew-solutions/queryset-go/queryset/query"
	"github.com/krew-solutions/queryset-go/queryset/schema"
	"github.com/krew-solutions/queryset-go/queryset/session"
	"github.com/krew-solutions/queryset-go/queryset/session/identitymap"
	"github.com/krew-solutions/queryset-go/queryset/state"
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

func TestFindAllHydratesRows(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "First", "2020-01-01"},
		[]any{2, "Second", "2020-02-01"},
	))

	instances, err := New().FindAll(stub, query.New(post))
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, "SELECT posts.id, posts.title, posts.pub_date FROM posts", stub.ActualQuery)

	title, ok := instances[0].Value("title")
	require.True(t, ok)
	assert.Equal(t, "First", title)

	// Relationships were not eager-loaded, so reading them would need a query.
	loaded := instances[0].LoadedProperties()
	assert.Contains(t, loaded, "title")
	assert.NotContains(t, loaded, "blog")
	assert.NotContains(t, loaded, "comments")
}

func TestFindAllEagerToOne(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "First", "2020-01-01", 7, "Acme"},
	))

	q, err := query.New(post).SelectRelated([]string{"blog"}, lookup.Options{"depth": 1})
	require.NoError(t, err)
	instances, err := New().FindAll(stub, q)
	require.NoError(t, err)
	require.Len(t, instances, 1)

	v, ok := instances[0].Value("blog")
	require.True(t, ok)
	child := v.(*state.Instance)
	require.NotNil(t, child)
	name, _ := child.Value("name")
	assert.Equal(t, "Acme", name)
	assert.Contains(t, instances[0].LoadedProperties(), "blog")
}

func TestFindAllEagerToOneAbsentRow(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "Orphan", "2020-01-01", nil, nil},
	))

	q, err := query.New(post).SelectRelated([]string{"blog"}, lookup.Options{"depth": 1})
	require.NoError(t, err)
	instances, err := New().FindAll(stub, q)
	require.NoError(t, err)
	require.Len(t, instances, 1)

	v, ok := instances[0].Value("blog")
	require.True(t, ok)
	assert.Nil(t, v.(*state.Instance))
}

func TestFindAllToManyFanoutCollapses(t *testing.T) {
	_, blog, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "Acme", 1, "First", "2020-01-01"},
		[]any{1, "Acme", 2, "Second", "2020-02-01"},
	))

	q, err := query.New(blog).SelectRelated([]string{"posts"}, lookup.Options{"depth": 1})
	require.NoError(t, err)
	instances, err := New().FindAll(stub, q)
	require.NoError(t, err)
	require.Len(t, instances, 1)

	v, ok := instances[0].Value("posts")
	require.True(t, ok)
	posts := v.([]*state.Instance)
	require.Len(t, posts, 2)
	first, _ := posts[0].Value("title")
	second, _ := posts[1].Value("title")
	assert.Equal(t, "First", first)
	assert.Equal(t, "Second", second)
}

func TestFindAllSharedChildIsSameInstance(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "First", "2020-01-01", 7, "Acme"},
		[]any{2, "Second", "2020-02-01", 7, "Acme"},
	))

	q, err := query.New(post).SelectRelated([]string{"blog"}, lookup.Options{"depth": 1})
	require.NoError(t, err)
	instances, err := New().FindAll(stub, q)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	a, _ := instances[0].Value("blog")
	b, _ := instances[1].Value("blog")
	assert.Same(t, a.(*state.Instance), b.(*state.Instance))
}

func TestFindAllReusesIdentityMapAcrossQueries(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "First", "2020-01-01"},
	))
	stub.IdentityMap().SetIsolationLevel(identitymap.Serializable)
	st := New()

	first, err := st.FindAll(stub, query.New(post))
	require.NoError(t, err)
	require.Len(t, first, 1)

	stub.Rows = testutils.NewRowsStub([]any{1, "Renamed", "2020-01-01"})
	second, err := st.FindAll(stub, query.New(post))
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Same(t, first[0], second[0])
	title, _ := second[0].Value("title")
	assert.Equal(t, "Renamed", title)
}

func TestFindAllPublishesQueryEvents(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "First", "2020-01-01"},
	))

	var started []session.QueryStartedEvent
	var ended []session.QueryEndedEvent
	stub.OnQueryStarted().Attach(func(e session.QueryStartedEvent) { started = append(started, e) }, "t")
	stub.OnQueryEnded().Attach(func(e session.QueryEndedEvent) { ended = append(ended, e) }, "t")

	q, err := query.New(post).FilterBy(map[string]any{"id__exact": 1})
	require.NoError(t, err)
	_, err = New().FindAll(stub, q)
	require.NoError(t, err)

	require.Len(t, started, 1)
	require.Len(t, ended, 1)
	assert.Equal(t, started[0].Query, ended[0].Query)
	assert.Equal(t, started[0].EventID, ended[0].EventID)
	assert.Equal(t, []any{1}, started[0].Params)
}

func TestFindOneNotFound(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub())

	_, err := New().FindOne(stub, query.New(post))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshClearsExpiry(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "Old", "2020-01-01"},
	))
	st := New()

	instances, err := st.FindAll(stub, query.New(post))
	require.NoError(t, err)
	inst := instances[0]

	inst.Expire()
	assert.True(t, inst.Expired())

	stub.Rows = testutils.NewRowsStub([]any{1, "New", "2020-01-01"})
	require.NoError(t, st.Refresh(stub, inst))

	assert.False(t, inst.Expired())
	title, _ := inst.Value("title")
	assert.Equal(t, "New", title)
	assert.Equal(t, "SELECT posts.id, posts.title, posts.pub_date FROM posts WHERE posts.id = $1", stub.ActualQuery)
	assert.Equal(t, []any{1}, stub.ActualParams)
}

func TestQueryEventsFanOutToStoreAndSessionObservers(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "First", "2020-01-01"},
	))
	st := New()

	var viaStore []session.QueryStartedEvent
	var viaSession []session.QueryStartedEvent
	st.OnQueryStarted().Attach(func(e session.QueryStartedEvent) { viaStore = append(viaStore, e) }, "t")
	stub.OnQueryStarted().Attach(func(e session.QueryStartedEvent) { viaSession = append(viaSession, e) }, "t")

	_, err := st.FindAll(stub, query.New(post))
	require.NoError(t, err)

	require.Len(t, viaStore, 1)
	require.Len(t, viaSession, 1)
	assert.Equal(t, viaStore[0].EventID, viaSession[0].EventID)
}

func TestAtomicPublishesScopeEvents(t *testing.T) {
	post, _, _ := blogSchema()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{1, "First", "2020-01-01"},
	))

	var startedScopes []session.SessionScopeStartedEvent
	var endedScopes []session.SessionScopeEndedEvent
	stub.OnScopeStarted().Attach(func(e session.SessionScopeStartedEvent) { startedScopes = append(startedScopes, e) }, "t")
	stub.OnScopeEnded().Attach(func(e session.SessionScopeEndedEvent) { endedScopes = append(endedScopes, e) }, "t")

	st := New()
	err := stub.Atomic(func(s session.Session) error {
		_, err := st.FindAll(s.(session.DbSession), query.New(post))
		return err
	})
	require.NoError(t, err)

	require.Len(t, startedScopes, 1)
	require.Len(t, endedScopes, 1)
	assert.Same(t, stub, startedScopes[0].Session)
	assert.Same(t, stub, endedScopes[0].Session)
}
