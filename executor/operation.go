package executor

import (
	"bytes"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/graphfed/executor/plan"
)

// buildRootOperation builds a downstream operation of the same
// operation type as the client operation, with selection as its root
// and variable definitions derived from usages.
func buildRootOperation(opType ast.Operation, selection ast.SelectionSet, usages map[string]plan.VariableDefinition) string {
	def := &ast.OperationDefinition{
		Operation:    opType,
		SelectionSet: selection,
	}
	appendVariableDefinitions(def, usages)
	return printDocument(def)
}

// buildEntityOperation builds the `query ($representations: [_Any!]!, ...)
// { _entities(representations: $representations) { ...selection } }`
// shape used for every entity fetch.
func buildEntityOperation(reservedVariable string, selection ast.SelectionSet, usages map[string]plan.VariableDefinition) string {
	entitiesField := &ast.Field{
		Name: "_entities",
		Arguments: ast.ArgumentList{
			{
				Name: "representations",
				Value: &ast.Value{
					Kind: ast.Variable,
					Raw:  reservedVariable,
				},
			},
		},
		SelectionSet: selection,
	}

	def := &ast.OperationDefinition{
		Operation:    ast.Query,
		SelectionSet: ast.SelectionSet{entitiesField},
		VariableDefinitions: ast.VariableDefinitionList{
			{
				Variable: reservedVariable,
				Type: &ast.Type{
					Elem: &ast.Type{
						NamedType: "_Any",
						NonNull:   true,
					},
					NonNull: true,
				},
			},
		},
	}
	appendVariableDefinitions(def, usages)
	return printDocument(def)
}

func appendVariableDefinitions(def *ast.OperationDefinition, usages map[string]plan.VariableDefinition) {
	for name, usage := range usages {
		def.VariableDefinitions = append(def.VariableDefinitions, &ast.VariableDefinition{
			Variable: name,
			Type:     usage.Type,
		})
	}
}

func printDocument(def *ast.OperationDefinition) string {
	doc := &ast.QueryDocument{Operations: ast.OperationList{def}}
	buf := &bytes.Buffer{}
	formatter.NewFormatter(buf).FormatQueryDocument(doc)
	return buf.String()
}
