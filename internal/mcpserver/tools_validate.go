package mcpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasgate/apierrors"
	"github.com/erraggy/oasgate/httpvalidator"
)

type validateRequestInput struct {
	Contract contractInput       `json:"contract"          jsonschema:"The Swagger 2.0 contract to validate against"`
	Method   string              `json:"method"            jsonschema:"HTTP method, e.g. GET"`
	URL      string              `json:"url"               jsonschema:"Request path with optional query string, e.g. /pets?limit=2"`
	Headers  map[string][]string `json:"headers,omitempty" jsonschema:"Request headers; a header may carry several values"`
	Body     any                 `json:"body,omitempty"    jsonschema:"Parsed request body: a JSON value or a map of form fields"`
	Offset   int                 `json:"offset,omitempty"  jsonschema:"Skip the first N errors (for pagination)"`
	Limit    int                 `json:"limit,omitempty"   jsonschema:"Maximum number of errors to return (default 100)"`
}

type validateResponseInput struct {
	Contract   contractInput       `json:"contract"          jsonschema:"The Swagger 2.0 contract to validate against"`
	Method     string              `json:"method"            jsonschema:"HTTP method of the request that produced the response"`
	URL        string              `json:"url"               jsonschema:"Path of the request that produced the response"`
	StatusCode int                 `json:"status_code"       jsonschema:"Response status code"`
	Headers    map[string][]string `json:"headers,omitempty" jsonschema:"Response headers; repeated headers as several values"`
	Body       string              `json:"body,omitempty"    jsonschema:"Raw response body; empty means no body was sent"`
	Offset     int                 `json:"offset,omitempty"  jsonschema:"Skip the first N errors (for pagination)"`
	Limit      int                 `json:"limit,omitempty"   jsonschema:"Maximum number of errors to return (default 100)"`
}

type validateViolation struct {
	Property string `json:"property"`
	Keyword  string `json:"keyword"`
	Message  string `json:"message"`
}

type validateIssue struct {
	Kind       string              `json:"kind"`
	Path       string              `json:"path"`
	Message    string              `json:"message"`
	Violations []validateViolation `json:"violations,omitempty"`
}

type validateOutput struct {
	Valid       bool                `json:"valid"`
	MatchedPath string              `json:"matched_path,omitempty"`
	ErrorCount  int                 `json:"error_count"`
	Returned    int                 `json:"returned"`
	Errors      []validateIssue     `json:"errors,omitempty"`
	Values      map[string]any      `json:"values,omitempty"`
	Status      int                 `json:"status"`
	Document    *apierrors.Document `json:"document,omitempty"`
}

func handleValidateRequest(_ context.Context, _ *mcp.CallToolRequest, input validateRequestInput) (*mcp.CallToolResult, validateOutput, error) {
	if err := checkExchange(input.Method, input.URL); err != nil {
		return errResult(err), validateOutput{}, nil
	}
	v, err := input.Contract.resolve()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	verdict, err := v.ValidateRequest(&httpvalidator.Request{
		Method: input.Method,
		URL:    input.URL,
		Header: toHeader(input.Headers),
		Body:   input.Body,
	})
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	output := toOutput(apierrors.ScopeRequest, verdict, input.Method, input.Offset, input.Limit)
	output.Values = verdict.Values
	if len(output.Values) == 0 {
		output.Values = nil
	}
	return nil, output, nil
}

func handleValidateResponse(_ context.Context, _ *mcp.CallToolRequest, input validateResponseInput) (*mcp.CallToolResult, validateOutput, error) {
	if err := checkExchange(input.Method, input.URL); err != nil {
		return errResult(err), validateOutput{}, nil
	}
	if input.StatusCode < 100 || input.StatusCode > 999 {
		return errResult(errors.New("status_code must be a three-digit HTTP status")), validateOutput{}, nil
	}
	v, err := input.Contract.resolve()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	req := &httpvalidator.Request{Method: input.Method, URL: input.URL}
	resp := &httpvalidator.Response{
		StatusCode: input.StatusCode,
		Header:     toHeader(input.Headers),
	}
	if input.Body != "" {
		resp.Body = []byte(input.Body)
	}

	verdict, err := v.ValidateResponse(req, resp)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	output := toOutput(apierrors.ScopeResponse, verdict, input.Method, input.Offset, input.Limit)
	if output.Valid {
		output.Status = input.StatusCode
	}
	return nil, output, nil
}

func checkExchange(method, url string) error {
	if method == "" {
		return errors.New("method is required")
	}
	if url == "" || url[0] != '/' {
		return errors.New("url must be a path starting with /")
	}
	return nil
}

// toHeader canonicalizes header names as net/http would have.
func toHeader(in map[string][]string) http.Header {
	if len(in) == 0 {
		return nil
	}
	h := make(http.Header, len(in))
	for name, values := range in {
		for _, value := range values {
			h.Add(name, value)
		}
	}
	return h
}

// toOutput converts a verdict into tool output. Errors are paginated; the
// error document always covers every error.
func toOutput(scope apierrors.Scope, verdict *httpvalidator.Verdict, method string, offset, limit int) validateOutput {
	output := validateOutput{
		Valid:       verdict.Valid,
		MatchedPath: verdict.MatchedPath,
		ErrorCount:  len(verdict.Errors),
		Status:      http.StatusOK,
	}

	issues := makeSlice[validateIssue](len(verdict.Errors))
	for _, e := range verdict.Errors {
		issue := validateIssue{
			Kind:    e.Kind.String(),
			Path:    e.Path,
			Message: e.Message,
		}
		issue.Violations = makeSlice[validateViolation](len(e.Violations))
		for _, vi := range e.Violations {
			issue.Violations = append(issue.Violations, validateViolation{
				Property: vi.Property,
				Keyword:  vi.Keyword,
				Message:  vi.Message,
			})
		}
		issues = append(issues, issue)
	}
	output.Errors = paginate(issues, offset, limit)
	output.Returned = len(output.Errors)

	if !verdict.Valid {
		doc := apierrors.Translate(scope, verdict, method)
		output.Status = doc.Status
		output.Document = doc
	}
	return output
}
