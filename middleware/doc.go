// Package middleware enforces an OpenAPI 2.0 contract on live HTTP traffic.
//
// The middleware validates every request before it reaches the wrapped
// handler. A violating request is answered with a JSON:API error document
// (see package apierrors) and the handler is never called. A valid request
// carries its verdict, including coerced parameter values, in its context:
//
//	doc, _ := contract.ParseFile("swagger.yaml")
//	v, _ := httpvalidator.New(doc)
//	mw, _ := middleware.New(v, middleware.WithResponseValidation(true))
//	http.ListenAndServe(":8080", mw.Handler(mux))
//
//	func showPet(w http.ResponseWriter, r *http.Request) {
//	    verdict, _ := middleware.VerdictFromContext(r.Context())
//	    id := verdict.Values["petId"].(int64)
//	    ...
//	}
//
// # Response validation
//
// With WithResponseValidation(true) the handler's response is buffered and
// validated exactly once when the handler returns. A valid response is sent
// unchanged; a violating one is replaced by a 500 error document, so the
// client never sees bytes that break the contract.
//
// # Request bodies
//
// JSON bodies are decoded, and urlencoded and multipart forms are parsed into
// field maps. The body is restored for the wrapped handler.
//
// # Observability
//
// Rejections are logged with log/slog. WithMetrics records Prometheus
// counters and WithTracerProvider wraps each validation in an OpenTelemetry
// span. Gin applications use Middleware.Gin.
package middleware
