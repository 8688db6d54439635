// Package oaserrors provides structured error types for oasgate.
//
// Import path: github.com/erraggy/oasgate/oaserrors
//
// Validation failures of traffic are never Go errors: they are reported in a
// verdict. The types here cover the remaining failures, which are faults in
// setup or in the contract itself.
//
// # Error Types
//
//   - [ParseError]: the contract document is not valid YAML/JSON
//   - [ReferenceError]: a contract $ref points nowhere (strict setup only)
//   - [SchemaError]: the schema evaluator failed on a schema fragment
//   - [ConfigError]: missing contract, bad option values, rejected contracts
//
// # Sentinel Errors
//
// Each error type has a corresponding sentinel error for use with errors.Is():
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrSchema]: Matches any [SchemaError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage Examples
//
//	v, err := httpvalidator.New(doc)
//	if errors.Is(err, oaserrors.ErrConfig) {
//	    // Fatal setup error
//	}
//
//	verdict, err := v.ValidateRequest(req)
//	var schemaErr *oaserrors.SchemaError
//	if errors.As(err, &schemaErr) {
//	    log.Printf("contract schema for %s is broken: %v", schemaErr.Location, schemaErr.Cause)
//	}
package oaserrors
