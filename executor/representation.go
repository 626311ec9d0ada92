package executor

import (
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
)

// ErrRequiredFieldMissing is the sentinel wrapped into every extraction
// error, so callers can distinguish it from other fetch failures with
// errors.Is.
var ErrRequiredFieldMissing = errors.New("required field missing during representation projection")

// ExtractRepresentation projects entity through required, the minimal
// representation a downstream entity fetch needs to identify it. The
// result is considered valid only if it ends up with a populated
// __typename; invalid representations are reported via ok=false, not an
// error, so the caller can silently skip that entity for this fetch.
func ExtractRepresentation(entity ResultMap, required ast.SelectionSet) (ResultMap, bool, error) {
	rep, err := project(entity, required)
	if err != nil {
		return nil, false, err
	}
	typename, _ := rep["__typename"].(string)
	if typename == "" {
		return nil, false, nil
	}
	return rep, true, nil
}

// project walks selection against entity, producing the ResultMap it
// describes. Only FIELD and INLINE_FRAGMENT selections are expected; a
// FRAGMENT_SPREAD would have been inlined by the planner.
func project(entity ResultMap, selection ast.SelectionSet) (ResultMap, error) {
	out := ResultMap{}
	for _, sel := range selection {
		switch s := sel.(type) {
		case *ast.Field:
			responseName := s.Alias
			if responseName == "" {
				responseName = s.Name
			}
			value, ok := entity[responseName]
			if !ok {
				if responseName == "__typename" {
					// Leaves the representation without __typename, which
					// ExtractRepresentation reports as ok=false.
					continue
				}
				return nil, errors.Wrapf(ErrRequiredFieldMissing, "field %q", responseName)
			}
			if len(s.SelectionSet) == 0 {
				out[responseName] = value
				continue
			}
			projected, err := projectValue(value, s.SelectionSet)
			if err != nil {
				return nil, err
			}
			out[responseName] = projected
		case *ast.InlineFragment:
			if s.TypeCondition == "" {
				continue
			}
			typename, _ := entity["__typename"].(string)
			if typename == "" || typename != s.TypeCondition {
				continue
			}
			fragmentFields, err := project(entity, s.SelectionSet)
			if err != nil {
				return nil, err
			}
			for k, v := range fragmentFields {
				out[k] = v
			}
		}
	}
	return out, nil
}

// projectValue recurses elementwise through a list, or through a nested
// selection set on an object; a scalar (including null) is copied as-is.
func projectValue(value any, selection ast.SelectionSet) (any, error) {
	if value == nil {
		return nil, nil
	}
	if list, ok := value.([]any); ok {
		out := make([]any, len(list))
		for i, elem := range list {
			projected, err := projectValue(elem, selection)
			if err != nil {
				return nil, err
			}
			out[i] = projected
		}
		return out, nil
	}
	if obj, ok := asResultMap(value); ok {
		return project(obj, selection)
	}
	return value, nil
}
