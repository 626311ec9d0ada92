package executor

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

// resolveIntrospectionField answers __schema or __type(name:) from
// OperationContext.Schema rather than the working tree, since no
// downstream service ever resolves these. Coverage is intentionally
// partial (enough to answer type/field/enum shape questions) rather
// than a full re-implementation of the introspection schema; see
// DESIGN.md for the scope decision.
func resolveIntrospectionField(ec *ExecutionContext, field *ast.Field) any {
	schema := ec.Operation.Schema
	if schema == nil {
		return nil
	}

	switch field.Name {
	case "__schema":
		return &schemaResolver{schema: schema}
	case "__type":
		name, _ := firstArgument(field, "name").(string)
		def, ok := schema.Types[name]
		if !ok {
			return nil
		}
		return &typeResolver{def: def}
	default:
		return nil
	}
}

func firstArgument(field *ast.Field, name string) any {
	for _, a := range field.Arguments {
		if a.Name == name {
			return a.Value.Raw
		}
	}
	return nil
}

// schemaResolver implements fieldResolver over *ast.Schema, backing
// __schema.
type schemaResolver struct {
	schema *ast.Schema
}

func (s *schemaResolver) ResolveField(name string, _ map[string]any) (any, bool) {
	switch name {
	case "queryType":
		return wrapDefinition(s.schema.Query), true
	case "mutationType":
		return wrapDefinition(s.schema.Mutation), true
	case "subscriptionType":
		return wrapDefinition(s.schema.Subscription), true
	case "types":
		names := make([]string, 0, len(s.schema.Types))
		for n := range s.schema.Types {
			names = append(names, n)
		}
		sort.Strings(names)
		out := make([]any, len(names))
		for i, n := range names {
			out[i] = &typeResolver{def: s.schema.Types[n]}
		}
		return out, true
	case "directives":
		return []any{}, true
	default:
		return nil, false
	}
}

func wrapDefinition(def *ast.Definition) any {
	if def == nil {
		return nil
	}
	return &typeResolver{def: def}
}

// typeResolver implements fieldResolver over *ast.Definition, backing
// __type and the "types"/"queryType"/... fields of __schema.
type typeResolver struct {
	def *ast.Definition
}

func (t *typeResolver) ResolveField(name string, _ map[string]any) (any, bool) {
	switch name {
	case "name":
		return t.def.Name, true
	case "description":
		return t.def.Description, true
	case "kind":
		return string(t.def.Kind), true
	case "fields":
		out := make([]any, len(t.def.Fields))
		for i, f := range t.def.Fields {
			out[i] = &fieldDefResolver{def: f}
		}
		return out, true
	case "interfaces":
		out := make([]any, len(t.def.Interfaces))
		for i, name := range t.def.Interfaces {
			out[i] = name
		}
		return out, true
	case "enumValues":
		out := make([]any, len(t.def.EnumValues))
		for i, v := range t.def.EnumValues {
			out[i] = map[string]any{
				"name":        v.Name,
				"description": v.Description,
			}
		}
		return out, true
	case "possibleTypes":
		return []any{}, true
	case "ofType":
		return nil, true
	default:
		return nil, false
	}
}

// fieldDefResolver implements fieldResolver over *ast.FieldDefinition,
// backing __type(...).fields.
type fieldDefResolver struct {
	def *ast.FieldDefinition
}

func (f *fieldDefResolver) ResolveField(name string, _ map[string]any) (any, bool) {
	switch name {
	case "name":
		return f.def.Name, true
	case "description":
		return f.def.Description, true
	case "type":
		return &typeRefResolver{t: f.def.Type}, true
	case "args":
		return []any{}, true
	default:
		return nil, false
	}
}

// typeRefResolver implements fieldResolver over *ast.Type, backing the
// NamedType/NonNull/Elem wrapping a field's declared type.
type typeRefResolver struct {
	t *ast.Type
}

func (r *typeRefResolver) ResolveField(name string, _ map[string]any) (any, bool) {
	if r.t == nil {
		return nil, false
	}
	switch name {
	case "name":
		return r.t.NamedType, true
	case "kind":
		switch {
		case r.t.NonNull:
			return "NON_NULL", true
		case r.t.Elem != nil:
			return "LIST", true
		default:
			return "SCALAR", true
		}
	case "ofType":
		switch {
		case r.t.NonNull:
			inner := *r.t
			inner.NonNull = false
			return &typeRefResolver{t: &inner}, true
		case r.t.Elem != nil:
			return &typeRefResolver{t: r.t.Elem}, true
		default:
			return nil, true
		}
	default:
		return nil, false
	}
}
