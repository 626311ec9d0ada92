package executor

import "github.com/graphfed/executor/plan"

// flatten resolves a response path containing list markers into the
// concrete sub-result(s) to operate on. The returned value (or list of
// values) is a reference into the working tree: mutating it mutates the
// tree.
func flatten(value any, path plan.ResponsePath) any {
	if len(path) == 0 {
		return value
	}
	if value == nil {
		return nil
	}

	head, tail := path[0], path[1:]

	if head.IsList {
		list := value.([]any)
		out := make([]any, 0, len(list))
		for _, elem := range list {
			sub := flatten(elem, tail)
			if subList, ok := sub.([]any); ok {
				out = append(out, subList...)
			} else if sub != nil {
				out = append(out, sub)
			}
		}
		return out
	}

	m, ok := asResultMap(value)
	if !ok {
		return nil
	}
	return flatten(m[head.Field], tail)
}
