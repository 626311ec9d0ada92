package httpdatasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphfed/executor/executor"
)

func TestBuildRequestBodyWithoutVariables(t *testing.T) {
	body, err := buildRequestBody("query { me { id } }", nil)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "query { me { id } }", decoded["query"])
	_, hasVariables := decoded["variables"]
	assert.False(t, hasVariables)
}

func TestBuildRequestBodyCarriesNestedVariables(t *testing.T) {
	variables := map[string]any{
		"representations": []any{
			map[string]any{"__typename": "Product", "upc": "a"},
		},
	}

	body, err := buildRequestBody("query Entities($representations: [_Any!]!) { _entities(representations: $representations) { __typename } }", variables)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	reps := decoded["variables"].(map[string]any)["representations"].([]any)
	require.Len(t, reps, 1)
	assert.Equal(t, "Product", reps[0].(map[string]any)["__typename"])
}

func TestParseResponseDecodesData(t *testing.T) {
	resp, err := parseResponse([]byte(`{"data":{"me":{"id":"1","name":"Ada"}}}`))
	require.NoError(t, err)

	require.NotNil(t, resp.Data)
	me := resp.Data["me"].(map[string]any)
	assert.Equal(t, "1", me["id"])
	assert.Equal(t, "Ada", me["name"])
	assert.Empty(t, resp.Errors)
}

func TestParseResponseDecodesErrorsArray(t *testing.T) {
	raw := `{
		"data": {"a": 1},
		"errors": [
			{"message": "bad field", "path": ["a", 0], "extensions": {"code": "X"}}
		]
	}`
	resp, err := parseResponse([]byte(raw))
	require.NoError(t, err)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "bad field", resp.Errors[0].Message)
	assert.Equal(t, []any{"a", float64(0)}, resp.Errors[0].Path)
	assert.Equal(t, "X", resp.Errors[0].Extensions["code"])
}

func TestParseResponseWithoutDataOrErrorsIsEmpty(t *testing.T) {
	resp, err := parseResponse([]byte(`{}`))
	require.NoError(t, err)

	assert.Nil(t, resp.Data)
	assert.Empty(t, resp.Errors)
}

func TestProcessRoundTripsThroughHTTPServer(t *testing.T) {
	var receivedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&receivedBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"name":"Ada"}}`))
	}))
	defer server.Close()

	ds := New(server.URL)

	resp, err := ds.Process(context.Background(), &executor.ServiceRequest{
		Query:     "query { me { name } }",
		Variables: map[string]any{"id": "1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Ada", resp.Data["name"])
	assert.Equal(t, "query { me { name } }", receivedBody["query"])
	assert.Equal(t, "1", receivedBody["variables"].(map[string]any)["id"])
}

func TestStringIdentifiesURL(t *testing.T) {
	ds := New("http://subgraph.internal/query")
	assert.Equal(t, "httpdatasource(http://subgraph.internal/query)", ds.String())
}
