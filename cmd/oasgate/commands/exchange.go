package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasgate/httpvalidator"
)

// exchangeFile is a recording of HTTP traffic to check against a contract.
//
//	exchanges:
//	  - name: show pet
//	    request:
//	      method: GET
//	      url: /pets/1
//	      headers:
//	        X-Request-Count: "1"
//	    response:
//	      status: 200
//	      headers:
//	        Content-Type: application/json
//	      body: {id: 1, name: rex}
//
// A response body given as a string is used verbatim; any other value is
// serialized as JSON.
type exchangeFile struct {
	Exchanges []exchange `yaml:"exchanges"`
}

type exchange struct {
	Name     string            `yaml:"name"`
	Request  recordedRequest   `yaml:"request"`
	Response *recordedResponse `yaml:"response"`
}

type recordedRequest struct {
	Method  string                  `yaml:"method"`
	URL     string                  `yaml:"url"`
	Headers map[string]headerValues `yaml:"headers"`
	Body    any                     `yaml:"body"`
}

type recordedResponse struct {
	Status  int                     `yaml:"status"`
	Headers map[string]headerValues `yaml:"headers"`
	Body    any                     `yaml:"body"`
}

// headerValues accepts a single header value or a list of values.
type headerValues []string

func (h *headerValues) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*h = headerValues{node.Value}
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*h = values
		return nil
	default:
		return fmt.Errorf("line %d: header must be a string or a list of strings", node.Line)
	}
}

// parseExchanges decodes an exchange file (YAML or JSON) and checks that
// every exchange is complete.
func parseExchanges(data []byte) ([]exchange, error) {
	var file exchangeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing exchanges: %w", err)
	}
	if len(file.Exchanges) == 0 {
		return nil, errors.New("parsing exchanges: no exchanges found")
	}
	for i := range file.Exchanges {
		ex := &file.Exchanges[i]
		if ex.Name == "" {
			ex.Name = fmt.Sprintf("exchange %d", i+1)
		}
		if ex.Request.Method == "" || ex.Request.URL == "" {
			return nil, fmt.Errorf("%s: request method and url are required", ex.Name)
		}
		if ex.Response != nil && ex.Response.Status == 0 {
			return nil, fmt.Errorf("%s: response status is required", ex.Name)
		}
	}
	return file.Exchanges, nil
}

// toHeader converts recorded headers to canonical http.Header form.
func toHeader(in map[string]headerValues) http.Header {
	h := make(http.Header, len(in))
	for name, values := range in {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	return h
}

// snapshot builds the validator's view of the recorded request. The body is
// normalized the way the middleware decodes JSON, with numbers as json.Number.
func (r recordedRequest) snapshot() (*httpvalidator.Request, error) {
	body, err := normalizeBody(r.Body)
	if err != nil {
		return nil, fmt.Errorf("request body: %w", err)
	}
	return &httpvalidator.Request{
		Method: r.Method,
		URL:    r.URL,
		Header: toHeader(r.Headers),
		Body:   body,
	}, nil
}

// snapshot builds the validator's view of the recorded response.
func (r recordedResponse) snapshot() (*httpvalidator.Response, error) {
	resp := &httpvalidator.Response{
		StatusCode: r.Status,
		Header:     toHeader(r.Headers),
	}
	switch body := r.Body.(type) {
	case nil:
	case string:
		resp.Body = []byte(body)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("response body: %w", err)
		}
		resp.Body = data
	}
	return resp, nil
}

func normalizeBody(body any) (any, error) {
	switch body.(type) {
	case nil, string:
		return body, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
