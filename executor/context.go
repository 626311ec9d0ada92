// Package executor implements the federated query plan executor: it
// walks a plan.QueryPlan, dispatches fetches against downstream
// DataSources, merges partial results into a single working tree, and
// re-shapes that tree into the client-facing response.
package executor

import (
	"context"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ResultMap is the working result tree's node type: a mapping from field
// response-name to an arbitrary value (scalar, null, another ResultMap,
// or a list of either).
type ResultMap map[string]any

// OperationContext is the parsed client operation: the root operation
// node, its fragments, and the schema used for final response shaping.
// Immutable for the duration of a request.
type OperationContext struct {
	Document  *ast.OperationDefinition
	Fragments map[string]*ast.FragmentDefinition
	Schema    *ast.Schema
}

// GraphQLError is an error surfaced to the client, following the
// {message, path, extensions} shape data sources and the shaper both
// produce.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e *GraphQLError) Error() string {
	return e.Message
}

// ServiceRequest is what the executor hands to a DataSource.
type ServiceRequest struct {
	Query     string
	Variables map[string]any
	Context   any
}

// ServiceError is a downstream error entry, in the shape a DataSource
// reply may carry.
type ServiceError struct {
	Message    string
	Path       []any
	Extensions map[string]any
}

// ServiceResponse is what a DataSource replies with.
type ServiceResponse struct {
	Data   map[string]any
	Errors []*ServiceError
}

// DataSource is the abstract downstream collaborator: one per service
// name, dispatching a built operation and returning its reply.
type DataSource interface {
	Process(ctx context.Context, req *ServiceRequest) (*ServiceResponse, error)
}

// ExecutionContext is per-request state: the operation context,
// the service map, a request-scoped context object passed opaquely to
// data sources, and the append-only error list.
type ExecutionContext struct {
	ctx            context.Context
	Operation      *OperationContext
	Services       map[string]DataSource
	RequestContext any
	Variables      map[string]any

	opts Options

	mu     sync.Mutex
	errors []*GraphQLError

	// dispatchCount tracks how many fetches were actually sent to a
	// DataSource in this request, across however many Parallel
	// goroutines dispatch them.
	dispatchCount atomic.Int64
}

// DispatchCount reports how many fetches were dispatched to a
// DataSource so far during this request. Safe to call concurrently with
// in-flight Parallel children.
func (ec *ExecutionContext) DispatchCount() int64 {
	return ec.dispatchCount.Load()
}

// newExecutionContext builds the per-request state. The plan itself is
// passed separately to Execute rather than stored here, since nothing in
// ExecutionContext needs to re-walk it.
func newExecutionContext(
	ctx context.Context,
	opCtx *OperationContext,
	services map[string]DataSource,
	requestContext any,
	variables map[string]any,
	opts ...Option,
) *ExecutionContext {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	return &ExecutionContext{
		ctx:            ctx,
		Operation:      opCtx,
		Services:       services,
		RequestContext: requestContext,
		Variables:      variables,
		opts:           o,
	}
}

// Log returns the logger configured for this request, never nil.
func (ec *ExecutionContext) Log() *zap.Logger {
	return ec.opts.logger
}

// addError appends err to the request's error list. Safe for concurrent
// use by Parallel children.
func (ec *ExecutionContext) addError(err *GraphQLError) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.errors = append(ec.errors, err)
}

// merge performs deepMerge into dst while holding the merge-section
// mutex, so concurrent Parallel children never interleave writes into
// the same object.
func (ec *ExecutionContext) merge(dst, src ResultMap) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	deepMerge(dst, src)
}
