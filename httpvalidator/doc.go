// Package httpvalidator validates HTTP requests and responses against an
// OpenAPI 2.0 (Swagger) contract at runtime.
//
// The validator sits between routing and business logic. It resolves each
// request to a contract operation, extracts and coerces parameter values from
// the path, query string, headers and body, and validates them with a
// JSON-Schema evaluator that follows "#/definitions/..." references. Outgoing
// responses are checked the same way: status code, headers and body.
//
// # Basic Usage
//
//	doc, _ := contract.ParseFile("swagger.yaml")
//	v, err := httpvalidator.New(doc, httpvalidator.WithExceptions(`^/internal/`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	verdict, err := v.ValidateHTTPRequest(r, parsedBody)
//	if err != nil {
//	    // the contract itself is broken (see oaserrors.SchemaError)
//	}
//	if !verdict.Valid {
//	    for _, e := range verdict.Errors {
//	        log.Printf("%s: %s", e.Kind, e)
//	    }
//	}
//	limit := verdict.Values["limit"] // int64 after coercion
//
// # Verdicts
//
// Validation never fails with a Go error because of bad traffic. Every
// violation is a [ValidationError] in the returned [Verdict], tagged with a
// [Kind]. A verdict is valid if and only if it has no errors.
//
// # Coercion
//
// Wire values are strings. Before validation, [PreCast] converts them to the
// declared type: arrays are split by collectionFormat, and booleans, integers,
// numbers and JSON objects are parsed when possible. A value that does not
// convert is left for the schema to reject. After a value passes, [PostCast]
// turns "date" and "date-time" strings into time.Time.
//
// # Responses
//
// [Validator.ValidateResponse] takes the request and a response snapshot.
// Each occurrence of a repeated header is validated separately. Bodies are
// decoded as JSON when they parse; otherwise the raw text is validated.
//
// # Concurrency
//
// A [Validator] compiles its path matchers and schemas once in [New] and is
// read-only afterwards, so one instance serves concurrent requests.
//
// See the middleware package for net/http and gin integration.
package httpvalidator
