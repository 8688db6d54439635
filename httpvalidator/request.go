package httpvalidator

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erraggy/oasgate/contract"
	"github.com/erraggy/oasgate/oaserrors"
)

// ValidateRequest validates a request snapshot against the contract.
//
// The request path is resolved to an operation first. A path with no
// operation yields a RouteNotFound error unless it matches an exception
// pattern, in which case the verdict is valid. Every declared parameter is
// then checked independently: a missing required parameter yields
// ParameterNotFound, and a value that violates its schema yields
// ParameterInvalid. Coerced values are recorded in Verdict.Values.
//
// The error return is reserved for internal failures of the schema evaluator
// (*oaserrors.SchemaError), not validation errors which are captured in the verdict.
func (v *Validator) ValidateRequest(req *Request) (*Verdict, error) {
	verdict := newVerdict()
	verdict.MatchedMethod = strings.ToUpper(req.Method)

	route := BaseRoute(req.URL)
	match := v.Match(req.URL, req.Method)
	verdict.MatchedPath = match.Template

	if match.Operation == nil {
		if v.isException(route) {
			return verdict, nil
		}
		verdict.addError(routeNotFound(req.Method, route))
		return verdict, nil
	}

	params, _ := v.doc.OperationParameters(match.PathItem, match.Operation)
	for _, p := range params {
		if err := v.validateParameter(req, p, match.Params, verdict); err != nil {
			return nil, err
		}
	}

	return verdict, nil
}

// ValidateHTTPRequest validates r with an already-parsed body.
// It is shorthand for ValidateRequest(RequestFromHTTP(r, body)).
func (v *Validator) ValidateHTTPRequest(r *http.Request, body any) (*Verdict, error) {
	return v.ValidateRequest(RequestFromHTTP(r, body))
}

// validateParameter resolves, coerces and validates a single parameter.
func (v *Validator) validateParameter(req *Request, p *contract.Parameter, pathParams map[string]string, verdict *Verdict) error {
	raw, ok := resolveValue(req, p, pathParams)
	if !ok {
		if p.Required {
			verdict.addError(parameterNotFound(p))
		}
		return nil
	}

	schema := p.ValueSchema()
	value := PreCast(raw, schema)

	violations, err := v.schemaValidator.Validate(value, schema)
	if err != nil {
		return withSchemaLocation(err, p.In+" parameter "+p.Name)
	}
	if len(violations) > 0 {
		if p.In == contract.LocationHeader && v.redactHeaders {
			violations = redact(violations)
		}
		verdict.Values[p.Name] = value
		verdict.addError(parameterInvalid(p, violations))
		return nil
	}

	verdict.Values[p.Name] = PostCast(value, schema)
	return nil
}

// withSchemaLocation records where an evaluator failure happened.
func withSchemaLocation(err error, location string) error {
	var schemaErr *oaserrors.SchemaError
	if errors.As(err, &schemaErr) && schemaErr.Location == "" {
		schemaErr.Location = location
	}
	return err
}

// redact removes offending values from violations.
func redact(violations []Violation) []Violation {
	out := make([]Violation, len(violations))
	for i, vi := range violations {
		vi.Instance = nil
		out[i] = vi
	}
	return out
}
