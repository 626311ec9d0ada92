package executor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// fieldResolver lets a value stand in for a resolver function rather
// than plain data; the Introspection Resolver's schema/type wrappers
// implement it so the shaper can invoke them instead of reading a map
// key. Everything else in the working tree is plain ResultMap/scalar
// data and never implements this.
type fieldResolver interface {
	ResolveField(name string, args map[string]any) (any, bool)
}

// OrderedMap is a selection-ordered object: the shape every object in
// the client-facing response takes, preserving the field order the
// client's operation asked for. A plain map[string]any cannot do this —
// Go map iteration has no defined order, and encoding/json.Marshal
// always emits a map's keys sorted alphabetically, not in insertion
// order — so OrderedMap carries its own MarshalJSON instead.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

func newOrderedMap(capacity int) *OrderedMap {
	return &OrderedMap{values: make(map[string]any, capacity)}
}

// set assigns name to value, appending name to the key order the first
// time it's seen; a repeated response name (merged fragments, aliasing)
// keeps its original position but takes the latest value.
func (o *OrderedMap) set(name string, value any) {
	if _, exists := o.values[name]; !exists {
		o.keys = append(o.keys, name)
	}
	o.values[name] = value
}

// Get returns the value stored under name, regardless of its position.
func (o *OrderedMap) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Names returns the object's field names in selection order.
func (o *OrderedMap) Names() []string {
	return o.keys
}

// Len reports the number of fields in the object.
func (o *OrderedMap) Len() int {
	return len(o.keys)
}

func (o *OrderedMap) forEach(fn func(name string, value any)) {
	for _, k := range o.keys {
		fn(k, o.values[k])
	}
}

// MarshalJSON writes the object's fields in selection order rather than
// the key-sorted order encoding/json gives a plain map.
func (o *OrderedMap) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// shapeResponse runs the shaping pass and assembles the final envelope.
// A shaping-pass panic/error replaces the whole response with
// {errors:[...]}; previously collected downstream/plan errors are
// discarded in that case (see design notes — this is an acknowledged,
// deliberately kept shortcoming, not an oversight).
func shapeResponse(ec *ExecutionContext, working any) (response map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			response = map[string]any{
				"errors": []*GraphQLError{{Message: fmt.Sprint("response shaping failed: ", r)}},
			}
		}
	}()

	data := shapeSelectionSet(ec, ec.Operation.Document.SelectionSet, working, true)

	if len(ec.errors) == 0 {
		return map[string]any{"data": data}
	}
	return map[string]any{"data": data, "errors": ec.errors}
}

// shapeSelectionSet re-projects value through selection, producing
// exactly the fields, aliases, and ordering the client asked for. Unlike
// the Representation Extractor, missing fields become null instead of an
// error, and named fragment spreads are followed in addition to inline
// fragments.
func shapeSelectionSet(ec *ExecutionContext, selection ast.SelectionSet, value any, isRoot bool) *OrderedMap {
	out := newOrderedMap(len(selection))
	for _, sel := range selection {
		switch s := sel.(type) {
		case *ast.Field:
			responseName := s.Alias
			if responseName == "" {
				responseName = s.Name
			}
			out.set(responseName, shapeField(ec, s, value, isRoot))

		case *ast.InlineFragment:
			if !typeConditionMatches(s.TypeCondition, value) {
				continue
			}
			shapeSelectionSet(ec, s.SelectionSet, value, isRoot).forEach(out.set)

		case *ast.FragmentSpread:
			def := s.Definition
			if def == nil {
				def = ec.Operation.Fragments[s.Name]
			}
			if def == nil {
				continue
			}
			if !typeConditionMatches(def.TypeCondition, value) {
				continue
			}
			shapeSelectionSet(ec, def.SelectionSet, value, isRoot).forEach(out.set)
		}
	}
	return out
}

func shapeField(ec *ExecutionContext, field *ast.Field, value any, isRoot bool) any {
	if field.Name == "__typename" {
		if typename, ok := resolveProperty(value, "__typename", nil); ok {
			return typename
		}
		return nil
	}
	if isRoot && (field.Name == "__schema" || field.Name == "__type") {
		return resolveIntrospectionField(ec, field)
	}

	// Working-tree objects are keyed by response name (the alias, if any);
	// a fieldResolver answers by schema field name.
	key := field.Alias
	if _, isResolver := value.(fieldResolver); isResolver || key == "" {
		key = field.Name
	}
	args := shapeArguments(field.Arguments)
	child, found := resolveProperty(value, key, args)
	if !found || child == nil {
		return nil
	}

	if len(field.SelectionSet) == 0 {
		return child
	}

	if list, ok := child.([]any); ok {
		out := make([]any, len(list))
		for i, elem := range list {
			out[i] = shapeSelectionSet(ec, field.SelectionSet, elem, false)
		}
		return out
	}

	return shapeSelectionSet(ec, field.SelectionSet, child, false)
}

// resolveProperty reads property name off value: if value implements
// fieldResolver it is invoked with args (the "callable" case); if it's
// object data the property is read directly.
func resolveProperty(value any, name string, args map[string]any) (any, bool) {
	if value == nil {
		return nil, false
	}
	if resolver, ok := value.(fieldResolver); ok {
		return resolver.ResolveField(name, args)
	}
	if m, ok := asResultMap(value); ok {
		v, ok := m[name]
		return v, ok
	}
	return nil, false
}

func shapeArguments(args ast.ArgumentList) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for _, a := range args {
		out[a.Name] = a.Value.Raw
	}
	return out
}

func typeConditionMatches(typeCondition string, value any) bool {
	if typeCondition == "" {
		return true
	}
	typename, _ := resolveProperty(value, "__typename", nil)
	name, _ := typename.(string)
	return name == typeCondition
}
