package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/queryset-go/queryset/predicate"
	"github.com/krew-solutions/queryset-go/queryset/schema"
)

func TestTranslateOrderDirections(t *testing.T) {
	post, _, _ := blogSchema()
	col := predicate.Col(mustColumn(t, post, "title"), "posts")

	key, joins, err := TranslateOrder(post, "title")
	require.NoError(t, err)
	assert.Empty(t, joins)
	assert.Equal(t, OrderKey{Column: col}, key)

	key, _, err = TranslateOrder(post, "+title")
	require.NoError(t, err)
	assert.False(t, key.Descending)

	key, _, err = TranslateOrder(post, "-title")
	require.NoError(t, err)
	assert.True(t, key.Descending)
	assert.Equal(t, col, key.Column)
}

func TestTranslateOrderThroughRelationship(t *testing.T) {
	post, blog, _ := blogSchema()

	key, joins, err := TranslateOrder(post, "-blog__name")
	require.NoError(t, err)
	require.Len(t, joins, 1)
	assert.Equal(t, "blog", joins[0].Alias)
	assert.True(t, key.Descending)
	assert.Equal(t, predicate.Col(mustColumn(t, blog, "name"), "blog"), key.Column)
}

func TestTranslateOrderAmbiguousTarget(t *testing.T) {
	post, _, _ := blogSchema()

	_, _, err := TranslateOrder(post, "blog")
	require.ErrorIs(t, err, ErrAmbiguousOrderTarget)
}

func TestTranslateOrderRejectsOperatorSuffix(t *testing.T) {
	post, _, _ := blogSchema()

	// Operator names are not recognized in order terms; "exact" is just an
	// unknown property past the terminal column.
	_, _, err := TranslateOrder(post, "title__exact")
	require.ErrorIs(t, err, ErrTrailingTokens)
}

func TestTranslateOrderUnknownProperty(t *testing.T) {
	post, _, _ := blogSchema()

	_, _, err := TranslateOrder(post, "nope")
	var unknown *schema.UnknownPropertyError
	require.ErrorAs(t, err, &unknown)
}
