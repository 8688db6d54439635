package httpvalidator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/erraggy/oasgate/contract"
)

// Response is a snapshot of an outgoing HTTP response at finalization time.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Header holds the response headers; repeated headers keep every value.
	Header http.Header
	// Body is the serialized payload. An empty body means none was sent.
	Body []byte
}

// ValidateResponse validates a response against the operation of the request
// that produced it.
//
// A request whose route cannot be resolved yields a valid verdict: reporting
// it is the request validation's concern. The response definition is the one
// declared for the exact status code, or the "default" response; a $ref that
// does not resolve counts as undefined and yields StatusUndefined. Declared
// headers are checked per occurrence and the body against its schema.
//
// The error return is reserved for internal failures of the schema evaluator
// (*oaserrors.SchemaError), not validation errors which are captured in the verdict.
func (v *Validator) ValidateResponse(req *Request, resp *Response) (*Verdict, error) {
	verdict := newVerdict()
	verdict.MatchedMethod = strings.ToUpper(req.Method)
	verdict.StatusCode = resp.StatusCode

	match := v.Match(req.URL, req.Method)
	if match.Operation == nil {
		return verdict, nil
	}
	verdict.MatchedPath = match.Template

	def := v.responseFor(match.Operation, resp.StatusCode)
	if def == nil {
		verdict.addError(statusUndefined(resp.StatusCode))
		return verdict, nil
	}

	if err := v.validateResponseHeaders(def, resp.Header, verdict); err != nil {
		return nil, err
	}
	if err := v.validateResponseBody(def, resp.Body, verdict); err != nil {
		return nil, err
	}

	return verdict, nil
}

// responseFor selects the response definition for status: the exact status
// code, else "default". The selection is resolved afterwards, so a dangling
// $ref on the exact code does not fall back to "default".
func (v *Validator) responseFor(op *contract.Operation, status int) *contract.Response {
	selected, ok := op.Responses[strconv.Itoa(status)]
	if !ok {
		selected, ok = op.Responses[contract.DefaultResponseKey]
	}
	if !ok {
		return nil
	}
	resolved, ok := v.doc.Resp(selected)
	if !ok {
		return nil
	}
	return resolved
}

// validateResponseHeaders checks every declared header. Each occurrence of a
// repeated header is validated on its own and reported separately.
func (v *Validator) validateResponseHeaders(def *contract.Response, header http.Header, verdict *Verdict) error {
	names := make([]string, 0, len(def.Headers))
	for name := range def.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		schema := def.Headers[name]
		values := header.Values(name)
		if len(values) == 0 {
			verdict.addError(headerMissing(name))
			continue
		}
		for _, raw := range values {
			violations, err := v.schemaValidator.Validate(PreCast(raw, schema), schema)
			if err != nil {
				return withSchemaLocation(err, "response header "+name)
			}
			if len(violations) > 0 {
				if v.redactHeaders {
					violations = redact(violations)
				}
				verdict.addError(headerInvalid(name, violations))
			}
		}
	}
	return nil
}

// validateResponseBody checks the body against the declared schema.
func (v *Validator) validateResponseBody(def *contract.Response, body []byte, verdict *Verdict) error {
	hasBody := len(body) > 0
	if def.Schema == nil {
		if hasBody {
			verdict.addError(bodyUnexpected())
		}
		return nil
	}
	if !hasBody {
		verdict.addError(bodyMissing())
		return nil
	}

	target := v.doc.DerefSchema(def.Schema)
	value := decodeBody(body, target)
	value = PreCast(value, target)

	violations, err := v.schemaValidator.Validate(value, def.Schema)
	if err != nil {
		return withSchemaLocation(err, "response body")
	}
	if len(violations) > 0 {
		verdict.addError(bodyInvalid(violations))
	}
	return nil
}

// decodeBody decodes a JSON body when possible and falls back to the raw
// text. For a string schema the raw text is kept unless the body is a JSON
// string literal.
func decodeBody(body []byte, schema *contract.Schema) any {
	raw := string(body)
	if !json.Valid(body) {
		return raw
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return raw
	}

	if schema != nil && schema.Type == "string" {
		if _, isString := decoded.(string); !isString {
			return raw
		}
	}
	return decoded
}
