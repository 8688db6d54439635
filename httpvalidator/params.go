package httpvalidator

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/erraggy/oasgate/contract"
)

// Request is a snapshot of an incoming HTTP request as seen by the validator.
// The body must already be parsed (e.g. a decoded JSON document or form map);
// a nil Body means the request carried none.
type Request struct {
	// Method is the HTTP method (any case).
	Method string
	// URL is the request path with an optional query string ("/pets?limit=2").
	URL string
	// Header holds the request headers.
	Header http.Header
	// Query holds the decoded query string. When nil it is derived from URL.
	Query url.Values
	// Body is the parsed request payload.
	Body any
}

// RequestFromHTTP builds a Request snapshot from r with an already-parsed body.
func RequestFromHTTP(r *http.Request, body any) *Request {
	req := &Request{
		Method: r.Method,
		URL:    r.URL.RequestURI(),
		Header: r.Header,
		Body:   body,
	}
	if r.URL.RawQuery != "" {
		req.Query = r.URL.Query()
	}
	return req
}

// query returns the decoded query string, or nil when the URL has no query component.
func (r *Request) query() url.Values {
	if r.Query != nil {
		return r.Query
	}
	i := strings.IndexByte(r.URL, '?')
	if i < 0 {
		return nil
	}
	values, err := url.ParseQuery(r.URL[i+1:])
	if err != nil && len(values) == 0 {
		return nil
	}
	return values
}

// ParameterValue returns the raw value of parameter p in req, and whether it
// was present. pathParams holds the placeholder values of the matched route.
//
//   - path: the named placeholder value
//   - query: exact name first, then a case-insensitive match in sorted key order;
//     a "multi" array yields every value
//   - header: the first value of the header
//   - body, formData: the whole parsed payload
func ParameterValue(req *Request, p *contract.Parameter, pathParams map[string]string) (any, bool) {
	switch p.In {
	case contract.LocationPath:
		v, ok := pathParams[p.Name]
		return v, ok

	case contract.LocationQuery:
		return queryValue(req.query(), p)

	case contract.LocationHeader:
		if req.Header == nil {
			return nil, false
		}
		values := req.Header.Values(p.Name)
		if len(values) == 0 {
			return nil, false
		}
		return values[0], true

	case contract.LocationBody, contract.LocationForm:
		if req.Body == nil {
			return nil, false
		}
		return req.Body, true

	default:
		return nil, false
	}
}

func queryValue(query url.Values, p *contract.Parameter) (any, bool) {
	if query == nil {
		return nil, false
	}
	values, ok := query[p.Name]
	if !ok {
		// Keys are sorted so that case variants resolve the same way every time.
		for _, key := range sortedKeys(query) {
			if strings.EqualFold(key, p.Name) {
				values, ok = query[key], true
				break
			}
		}
	}
	if !ok || len(values) == 0 {
		return nil, false
	}
	if p.Inline != nil && p.Inline.Type == "array" && p.Inline.CollectionFormat == contract.CollectionMulti {
		return values, true
	}
	return values[0], true
}

// resolveValue is ParameterValue with default substitution: an absent optional
// parameter takes its declared default. Required parameters are never defaulted.
func resolveValue(req *Request, p *contract.Parameter, pathParams map[string]string) (any, bool) {
	if v, ok := ParameterValue(req, p, pathParams); ok {
		return v, true
	}
	if !p.Required && p.HasDefault() {
		return p.Default(), true
	}
	return nil, false
}
