// Package httpdatasource is a reference implementation of
// executor.DataSource over HTTP/JSON. It is not part of the core
// executor (the real transport is an external collaborator per the
// executor's scope), but it's a worked example of how a consuming
// gateway wires a subgraph in.
package httpdatasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/graphfed/executor/executor"
)

// DataSource POSTs {query, variables} as JSON to a single subgraph URL
// and parses the reply.
type DataSource struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// Option configures a DataSource.
type Option func(*DataSource)

// WithLogger attaches a structured logger to the data source.
func WithLogger(log *zap.Logger) Option {
	return func(d *DataSource) {
		if log != nil {
			d.log = log
		}
	}
}

// WithHTTPClient overrides the default client (10s timeout, matching the
// corpus's HTTP JSON data sources).
func WithHTTPClient(client *http.Client) Option {
	return func(d *DataSource) {
		if client != nil {
			d.client = client
		}
	}
}

// New builds a DataSource that dispatches every operation to url.
func New(url string, opts ...Option) *DataSource {
	d := &DataSource{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, apply := range opts {
		apply(d)
	}
	return d
}

// buildRequestBody assembles {"query": ..., "variables": ...} with sjson
// rather than a marshaled struct, so a variables value that doesn't
// round-trip through encoding/json tags (already-decoded representations,
// nested maps from a prior fetch) is carried through as raw JSON.
func buildRequestBody(query string, variables map[string]any) ([]byte, error) {
	body, err := sjson.SetBytes([]byte("{}"), "query", query)
	if err != nil {
		return nil, errors.Wrap(err, "encoding downstream query")
	}
	if len(variables) == 0 {
		return body, nil
	}
	rawVariables, err := json.Marshal(variables)
	if err != nil {
		return nil, errors.Wrap(err, "encoding downstream variables")
	}
	body, err = sjson.SetRawBytes(body, "variables", rawVariables)
	if err != nil {
		return nil, errors.Wrap(err, "attaching downstream variables")
	}
	return body, nil
}

// Process implements executor.DataSource.
func (d *DataSource) Process(ctx context.Context, req *executor.ServiceRequest) (*executor.ServiceResponse, error) {
	body, err := buildRequestBody(req.Query, req.Variables)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building downstream request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	d.log.Debug("dispatching downstream http request", zap.String("url", d.url))

	res, err := d.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "performing downstream request")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading downstream response body")
	}

	return parseResponse(raw)
}

// parseResponse splits {data, errors} out of raw without a full
// unmarshal into map[string]any for the envelope itself — jsonparser
// locates the two top-level keys directly, and each is then decoded on
// its own, matching how the corpus's HTTP data sources avoid decoding
// twice.
func parseResponse(raw []byte) (*executor.ServiceResponse, error) {
	resp := &executor.ServiceResponse{}

	if dataRaw, dataType, _, err := jsonparser.Get(raw, "data"); err == nil && dataType == jsonparser.Object {
		var data map[string]any
		if err := json.Unmarshal(dataRaw, &data); err != nil {
			return nil, errors.Wrap(err, "decoding downstream data")
		}
		resp.Data = data
	}

	errorsRaw, errorsType, _, err := jsonparser.Get(raw, "errors")
	if err != nil || errorsType != jsonparser.Array {
		return resp, nil
	}

	gjson.ParseBytes(errorsRaw).ForEach(func(_, value gjson.Result) bool {
		serviceErr := &executor.ServiceError{
			Message: value.Get("message").String(),
		}
		if pathResult := value.Get("path"); pathResult.Exists() {
			for _, seg := range pathResult.Array() {
				serviceErr.Path = append(serviceErr.Path, seg.Value())
			}
		}
		if extResult := value.Get("extensions"); extResult.Exists() {
			if m, ok := extResult.Value().(map[string]any); ok {
				serviceErr.Extensions = m
			}
		}
		resp.Errors = append(resp.Errors, serviceErr)
		return true
	})

	return resp, nil
}

var _ fmt.Stringer = (*DataSource)(nil)

// String identifies the data source for logging.
func (d *DataSource) String() string {
	return fmt.Sprintf("httpdatasource(%s)", d.url)
}
