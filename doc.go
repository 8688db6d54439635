// Package oasgate enforces OpenAPI 2.0 (Swagger) contracts on live HTTP traffic.
//
// Given a parsed contract, oasgate checks that each incoming request matches
// a declared operation and that its parameters and body satisfy their
// schemas. It also checks that each outgoing response uses a declared status
// code, carries the declared headers and has a body that matches the response
// schema.
//
// # Packages
//
//   - contract: parse a Swagger 2.0 document (YAML or JSON) and resolve local $refs
//   - httpvalidator: match routes, coerce parameters and validate requests and responses
//   - apierrors: translate verdicts into JSON:API error documents
//   - middleware: net/http and gin middleware that rejects violating traffic
//   - oaserrors: sentinel and typed errors shared by the packages above
//
// # Quick Start
//
//	doc, err := contract.ParseFile("swagger.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := httpvalidator.New(doc, httpvalidator.WithExceptions(`^/health$`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	verdict, err := v.ValidateRequest(&httpvalidator.Request{
//	    Method: "GET",
//	    URL:    "/pets/123",
//	})
//	if err != nil {
//	    log.Fatal(err) // schema evaluator failure
//	}
//	if !verdict.Valid {
//	    for _, e := range verdict.Errors {
//	        fmt.Println(e)
//	    }
//	}
//	petID := verdict.Values["petId"].(int64)
//
// Parameter values are coerced before validation: collection formats are
// split, numeric and boolean strings are converted, and date and date-time
// strings become time.Time once they pass validation.
//
// # Middleware
//
//	mw, err := middleware.New(v, middleware.WithResponseValidation(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(http.ListenAndServe(":8080", mw.Handler(mux)))
//
// # Command line
//
// The oasgate command checks recorded exchanges, lists routes, runs a
// contract-enforcing reverse proxy and serves the validator over MCP:
//
//	oasgate check swagger.yaml exchange.yaml
//	oasgate routes swagger.yaml
//	oasgate proxy --contract swagger.yaml --upstream http://localhost:9000
//	oasgate mcp
package oasgate
