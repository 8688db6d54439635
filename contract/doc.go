// Package contract loads OpenAPI 2.0 (Swagger) documents into the model used
// for runtime request and response validation.
//
// Only the sections that matter for traffic validation are modeled: paths and
// their operations, shared parameters and responses, schema definitions, and
// basePath. Every schema keeps its raw JSON-Schema form so the evaluator sees
// exactly what the contract declares.
//
// # Parsing
//
//	doc, err := contract.ParseFile("swagger.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, tmpl := range doc.PathOrder {
//	    fmt.Println(tmpl)
//	}
//
// Both YAML and JSON input are accepted. Path templates keep their declaration
// order in [Document.PathOrder].
//
// # References
//
// Parameters and responses may be "$ref" entries pointing at
// "#/parameters/<name>" and "#/responses/<name>". [Document.ResolveParameter]
// and [Document.ResolveResponse] look them up; a dangling reference resolves
// to (nil, false) and callers treat the element as undefined.
// "#/definitions/<name>" references inside schemas are left to the schema
// evaluator.
//
// A [Document] is never modified after parsing and may be shared freely
// between goroutines.
package contract
