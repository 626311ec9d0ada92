package executor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphfed/executor/plan"
)

func TestBuildRootOperationPrintsOperationTypeAndSelection(t *testing.T) {
	query := buildRootOperation(ast.Query, ast.SelectionSet{field("me", ast.SelectionSet{field("id", nil)})}, nil)

	assert.Contains(t, query, "query")
	assert.Contains(t, query, "me")
	assert.Contains(t, query, "id")
}

func TestBuildRootOperationIncludesVariableDefinitions(t *testing.T) {
	usages := map[string]plan.VariableDefinition{
		"id": {Name: "id", Type: ast.NonNullNamedType("ID", nil)},
	}

	query := buildRootOperation(ast.Query, ast.SelectionSet{field("user", nil)}, usages)

	assert.Contains(t, query, "$id")
	assert.Contains(t, query, "ID!")
}

func TestBuildRootOperationUsesMutationKeyword(t *testing.T) {
	query := buildRootOperation(ast.Mutation, ast.SelectionSet{field("createUser", nil)}, nil)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(query), "mutation"))
}

func TestBuildEntityOperationShapesEntitiesField(t *testing.T) {
	selection := ast.SelectionSet{field("name", nil)}

	query := buildEntityOperation("representations", selection, nil)

	assert.Contains(t, query, "_entities")
	assert.Contains(t, query, "$representations")
	assert.Contains(t, query, "[_Any!]!")
	assert.Contains(t, query, "name")
}

func TestBuildEntityOperationCarriesAdditionalVariableUsages(t *testing.T) {
	usages := map[string]plan.VariableDefinition{
		"locale": {Name: "locale", Type: ast.NamedType("String", nil)},
	}

	query := buildEntityOperation("representations", ast.SelectionSet{field("name", nil)}, usages)

	assert.Contains(t, query, "$locale")
	assert.Contains(t, query, "$representations")
}
