package executor

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"
)

// stubDataSource is a DataSource whose reply is scripted by the test,
// and which records every request it was asked to process.
type stubDataSource struct {
	responses []*ServiceResponse
	err       error
	calls     []*ServiceRequest
}

func (s *stubDataSource) Process(_ context.Context, req *ServiceRequest) (*ServiceResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return &ServiceResponse{}, nil
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

func singleResponse(resp *ServiceResponse) *stubDataSource {
	return &stubDataSource{responses: []*ServiceResponse{resp}}
}

func testOperationContext(opType ast.Operation, selection ast.SelectionSet) *OperationContext {
	return &OperationContext{
		Document: &ast.OperationDefinition{
			Operation:    opType,
			SelectionSet: selection,
		},
		Fragments: map[string]*ast.FragmentDefinition{},
	}
}
