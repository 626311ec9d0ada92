package executor

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/graphfed/executor/plan"
)

// executeFetch is the Fetch Executor: it builds the downstream operation
// document, injects variables, dispatches it via the matching
// DataSource, validates the reply, and merges it back into the working
// result tree addressed by slice.
func executeFetch(ec *ExecutionContext, node *plan.Fetch, slice any, dbg *debugScope) error {
	ds, ok := ec.Services[node.ServiceName]
	if !ok {
		return errors.Errorf("unknown service %q", node.ServiceName)
	}

	entities := normalizeSlice(slice)
	if len(entities) == 0 {
		return nil
	}

	variables := assembleVariables(ec, node.VariableUsages)

	if node.Requires == nil {
		return executeRootFetch(ec, ds, node, entities, variables, dbg)
	}
	return executeEntityFetch(ec, ds, node, entities, variables, dbg)
}

// normalizeSlice treats slice as a list of entities, wrapping a single
// object as a one-element list.
func normalizeSlice(slice any) []ResultMap {
	switch v := slice.(type) {
	case nil:
		return nil
	case []any:
		out := make([]ResultMap, 0, len(v))
		for _, e := range v {
			if m, ok := asResultMap(e); ok {
				out = append(out, m)
			}
		}
		return out
	case []ResultMap:
		return v
	default:
		if m, ok := asResultMap(v); ok {
			return []ResultMap{m}
		}
		return nil
	}
}

// assembleVariables copies client-provided variables named in usages
// into the downstream variables. An undefined value is omitted, never
// passed through as an explicit null.
func assembleVariables(ec *ExecutionContext, usages map[string]plan.VariableDefinition) map[string]any {
	out := make(map[string]any, len(usages))
	for name := range usages {
		if v, ok := ec.Variables[name]; ok {
			out[name] = v
		}
	}
	return out
}

func executeRootFetch(ec *ExecutionContext, ds DataSource, node *plan.Fetch, entities []ResultMap, variables map[string]any, dbg *debugScope) error {
	query := buildRootOperation(ec.Operation.Document.Operation, node.SelectionSet, node.VariableUsages)

	resp, err := dispatch(ec, ds, node.ServiceName, query, variables)
	if err != nil {
		return err
	}
	if resp == nil || resp.Data == nil {
		return nil
	}

	for _, entity := range entities {
		ec.merge(entity, ResultMap(resp.Data))
	}
	if dbg != nil {
		for k := range resp.Data {
			for _, entity := range entities {
				dbg.claim(ec.Log(), entity, k)
			}
		}
	}
	return nil
}

type keptRepresentation struct {
	sourceIndex int
	rep         ResultMap
}

func executeEntityFetch(ec *ExecutionContext, ds DataSource, node *plan.Fetch, entities []ResultMap, variables map[string]any, dbg *debugScope) error {
	reservedVar := ec.opts.reservedVariable
	if _, reserved := variables[reservedVar]; reserved {
		return errors.Errorf("client variable %q is reserved for entity fetches", reservedVar)
	}

	var kept []keptRepresentation
	for i, entity := range entities {
		rep, ok, err := ExtractRepresentation(entity, node.Requires)
		if err != nil {
			return errors.Wrapf(err, "projecting representation for service %q", node.ServiceName)
		}
		if !ok {
			continue
		}
		kept = append(kept, keptRepresentation{sourceIndex: i, rep: rep})
	}
	if len(kept) == 0 {
		return nil
	}

	query := buildEntityOperation(reservedVar, node.SelectionSet, node.VariableUsages)

	representations := make([]any, len(kept))
	for i, k := range kept {
		representations[i] = k.rep
	}
	variables[reservedVar] = representations

	resp, err := dispatch(ec, ds, node.ServiceName, query, variables)
	if err != nil {
		return err
	}
	if resp == nil || resp.Data == nil {
		return nil
	}

	rawEntities, _ := resp.Data["_entities"].([]any)
	if len(rawEntities) != len(kept) {
		return errors.Errorf(
			"entity fetch to service %q returned %d entities, expected %d",
			node.ServiceName, len(rawEntities), len(kept),
		)
	}

	for i, k := range kept {
		merged, ok := asResultMap(rawEntities[i])
		if !ok {
			continue
		}
		target := entities[k.sourceIndex]
		ec.merge(target, merged)
		if dbg != nil {
			for key := range merged {
				dbg.claim(ec.Log(), target, key)
			}
		}
	}
	return nil
}

func dispatch(ec *ExecutionContext, ds DataSource, serviceName, query string, variables map[string]any) (*ServiceResponse, error) {
	ec.dispatchCount.Inc()
	ec.Log().Debug("dispatching fetch",
		zap.String("service", serviceName),
		zap.String("query", query),
	)

	resp, err := ds.Process(ec.ctx, &ServiceRequest{
		Query:     query,
		Variables: variables,
		Context:   ec.RequestContext,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "dispatching fetch to service %q", serviceName)
	}
	if resp == nil {
		return nil, nil
	}
	for _, dsErr := range resp.Errors {
		ec.addError(wrapDownstreamError(dsErr, serviceName, query, variables))
	}
	return resp, nil
}

// wrapDownstreamError turns a raw downstream error into the
// DOWNSTREAM_SERVICE_ERROR-tagged GraphQLError the client sees.
func wrapDownstreamError(src *ServiceError, serviceName, query string, variables map[string]any) *GraphQLError {
	message := src.Message
	if message == "" {
		message = fmt.Sprintf("Error while fetching subquery from service %q", serviceName)
	}

	extensions := make(map[string]any, len(src.Extensions)+3)
	for k, v := range src.Extensions {
		extensions[k] = v
	}
	extensions["code"] = "DOWNSTREAM_SERVICE_ERROR"
	extensions["serviceName"] = serviceName
	extensions["query"] = query
	extensions["variables"] = variables

	return &GraphQLError{
		Message:    message,
		Path:       src.Path,
		Extensions: extensions,
	}
}
