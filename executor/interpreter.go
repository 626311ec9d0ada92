package executor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/graphfed/executor/plan"
)

// Execute is the executor's entry point: it walks plan's root node
// against a freshly allocated working tree and returns the shaped
// {data?, errors?} response.
func Execute(
	ctx context.Context,
	qp *plan.QueryPlan,
	services map[string]DataSource,
	requestContext any,
	opCtx *OperationContext,
	variables map[string]any,
	opts ...Option,
) map[string]any {
	ec := newExecutionContext(ctx, opCtx, services, requestContext, variables, opts...)

	working := ResultMap{}
	if qp != nil && qp.Root != nil {
		executeNode(ec, qp.Root, working, plan.ResponsePath{}, nil)
	}

	return shapeResponse(ec, working)
}

// executeNode walks a single plan node. Every invocation is its own
// panic boundary: a panic raised while building a representation,
// dispatching a fetch, or anywhere else in this call's subtree is
// recovered here, recorded as an error, and this node is treated as
// completed — siblings and the parent continue.
func executeNode(ec *ExecutionContext, node plan.Node, slice any, path plan.ResponsePath, dbg *debugScope) {
	if slice == nil || node == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			ec.addError(&GraphQLError{Message: fmt.Sprintf("plan execution failed: %v", r)})
		}
	}()

	switch n := node.(type) {
	case *plan.Sequence:
		for _, child := range n.Children {
			executeNode(ec, child, slice, path, dbg)
		}

	case *plan.Parallel:
		executeParallel(ec, n, slice, path, dbg)

	case *plan.Flatten:
		narrowed := flatten(slice, n.Path)
		executeNode(ec, n.Child, narrowed, path.Append(n.Path), dbg)

	case *plan.Fetch:
		if err := executeFetch(ec, n, slice, dbg); err != nil {
			ec.addError(toGraphQLError(err))
		}
	}
}

// executeParallel runs every child concurrently and waits for all of
// them to finish; children may not observe each other's writes until
// they all complete, since each runs against the same slice but the
// planner guarantees disjoint field coverage.
func executeParallel(ec *ExecutionContext, n *plan.Parallel, slice any, path plan.ResponsePath, dbg *debugScope) {
	var tracker *fieldOwnership
	if ec.opts.debugAssertions {
		tracker = newFieldOwnership()
	}

	g := new(errgroup.Group)
	for idx, child := range n.Children {
		idx, child := idx, child

		childDbg := dbg
		if tracker != nil {
			childDbg = &debugScope{tracker: tracker, childIdx: idx}
		}

		g.Go(func() error {
			executeNode(ec, child, slice, path, childDbg)
			return nil
		})
	}
	_ = g.Wait()
}

// toGraphQLError turns a fatal execution error (built with errors.Errorf
// or errors.Wrapf by the Fetch Executor) into the error shape the client
// sees: the error's message, plus the unwrapped root cause under
// extensions.cause when wrapping actually occurred.
func toGraphQLError(err error) *GraphQLError {
	if gqlErr, ok := err.(*GraphQLError); ok {
		return gqlErr
	}

	gqlErr := &GraphQLError{Message: err.Error()}
	if cause := errors.Cause(err); cause != err {
		gqlErr.Extensions = map[string]any{"cause": cause.Error()}
	}
	return gqlErr
}
