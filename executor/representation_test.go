package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

func field(name string, sub ast.SelectionSet) *ast.Field {
	return &ast.Field{Name: name, SelectionSet: sub}
}

func TestExtractRepresentationRequiresTypename(t *testing.T) {
	entity := ResultMap{"__typename": "Product", "upc": "a"}
	selection := ast.SelectionSet{field("__typename", nil), field("upc", nil)}

	rep, ok, err := ExtractRepresentation(entity, selection)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ResultMap{"__typename": "Product", "upc": "a"}, rep)
}

func TestExtractRepresentationDroppedWithoutTypename(t *testing.T) {
	entity := ResultMap{"upc": "a"}
	selection := ast.SelectionSet{field("upc", nil)}

	rep, ok, err := ExtractRepresentation(entity, selection)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rep)
}

func TestExtractRepresentationMissingFieldIsError(t *testing.T) {
	entity := ResultMap{"__typename": "Product"}
	selection := ast.SelectionSet{field("__typename", nil), field("upc", nil)}

	_, _, err := ExtractRepresentation(entity, selection)

	require.Error(t, err)
}

func TestProjectHandlesAlias(t *testing.T) {
	entity := ResultMap{"name": "Ada"}
	selection := ast.SelectionSet{
		&ast.Field{Name: "first_name", Alias: "name"},
	}

	out, err := project(entity, selection)

	require.NoError(t, err)
	assert.Equal(t, ResultMap{"name": "Ada"}, out)
}

func TestProjectInlineFragmentSkippedOnTypeMismatch(t *testing.T) {
	entity := ResultMap{"__typename": "Book"}
	selection := ast.SelectionSet{
		&ast.InlineFragment{
			TypeCondition: "Movie",
			SelectionSet:  ast.SelectionSet{field("title", nil)},
		},
	}

	// Movie.title is "missing" from the entity, but since the fragment's
	// type condition doesn't match, its fields are skipped entirely --
	// this must not be an extraction error.
	out, err := project(entity, selection)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestProjectInlineFragmentMergedOnMatch(t *testing.T) {
	entity := ResultMap{"__typename": "Movie", "title": "Arrival"}
	selection := ast.SelectionSet{
		&ast.InlineFragment{
			TypeCondition: "Movie",
			SelectionSet:  ast.SelectionSet{field("title", nil)},
		},
	}

	out, err := project(entity, selection)

	require.NoError(t, err)
	assert.Equal(t, ResultMap{"title": "Arrival"}, out)
}

func TestProjectInlineFragmentWithoutTypeConditionSkipped(t *testing.T) {
	entity := ResultMap{"__typename": "Movie"}
	selection := ast.SelectionSet{
		&ast.InlineFragment{SelectionSet: ast.SelectionSet{field("title", nil)}},
	}

	out, err := project(entity, selection)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestProjectPreservesNullScalars(t *testing.T) {
	entity := ResultMap{"middleName": nil}
	selection := ast.SelectionSet{field("middleName", nil)}

	out, err := project(entity, selection)

	require.NoError(t, err)
	assert.Nil(t, out["middleName"])
	_, ok := out["middleName"]
	assert.True(t, ok)
}

func TestProjectRecursesThroughLists(t *testing.T) {
	entity := ResultMap{
		"reviews": []any{
			ResultMap{"body": "great", "__typename": "Review"},
			ResultMap{"body": "ok", "__typename": "Review"},
		},
	}
	selection := ast.SelectionSet{
		field("reviews", ast.SelectionSet{field("body", nil)}),
	}

	out, err := project(entity, selection)

	require.NoError(t, err)
	assert.Equal(t, []any{
		ResultMap{"body": "great"},
		ResultMap{"body": "ok"},
	}, out["reviews"])
}
