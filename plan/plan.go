// Package plan defines the data types that make up a federated query
// plan: the tagged tree of control-flow and data-flow nodes that the
// executor interprets. Building a QueryPlan is the query planner's job
// (out of scope here); this package only describes its shape.
package plan

import "github.com/vektah/gqlparser/v2/ast"

// Node is a single unit of work in a query plan. It is a closed sum type
// with four variants (Sequence, Parallel, Flatten, Fetch); the marker
// method keeps external packages from adding a fifth.
type Node interface {
	isPlanNode()
}

// Sequence executes its children in order, each seeing the mutations of
// the one before it.
type Sequence struct {
	Children []Node
}

func (*Sequence) isPlanNode() {}

// Parallel executes its children with no ordering between them. The
// planner guarantees siblings touch disjoint fields per entity.
type Parallel struct {
	Children []Node
}

func (*Parallel) isPlanNode() {}

// Flatten narrows the working slice to the sub-results addressed by Path,
// then executes Child over that narrower slice.
type Flatten struct {
	Path  ResponsePath
	Child Node
}

func (*Flatten) isPlanNode() {}

// Fetch issues one operation against one downstream service.
type Fetch struct {
	ServiceName string

	// SelectionSet is the set of fields this fetch asks the service for.
	SelectionSet ast.SelectionSet

	// VariableUsages maps a variable name used by SelectionSet to its
	// declared type, so the downstream operation can carry a matching
	// variable definition.
	VariableUsages map[string]VariableDefinition

	// Requires is non-nil for an entity fetch: the minimal selection
	// needed to build a _entities representation for each input entity.
	// nil means this is a root fetch.
	Requires ast.SelectionSet
}

func (*Fetch) isPlanNode() {}

// VariableDefinition is the type half of a variableUsages entry; the
// value half is resolved at execution time from the client's variables.
type VariableDefinition struct {
	Name string
	Type *ast.Type
}

// PathSegment is either a field name or the list marker, written "@"
// in path literals, meaning "descend through every element of this list".
type PathSegment struct {
	Field  string
	IsList bool
}

// Field builds a field-name path segment.
func Field(name string) PathSegment {
	return PathSegment{Field: name}
}

// List is the list-marker path segment, written "@" in plan literals.
var List = PathSegment{IsList: true}

// ResponsePath is an ordered sequence of path segments addressing a
// sub-region of the working result tree.
type ResponsePath []PathSegment

// Append returns a new ResponsePath holding p followed by other, without
// aliasing either argument's backing array.
func (p ResponsePath) Append(other ResponsePath) ResponsePath {
	out := make(ResponsePath, 0, len(p)+len(other))
	out = append(out, p...)
	out = append(out, other...)
	return out
}

func (s PathSegment) String() string {
	if s.IsList {
		return "@"
	}
	return s.Field
}

// QueryPlan wraps a single root Node. A nil Root means there is no
// downstream work; the response is shaped from an empty working tree.
type QueryPlan struct {
	Root Node
}
