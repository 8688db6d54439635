// Package apierrors translates validation verdicts into JSON:API error documents.
//
// A request verdict becomes a document whose status is the highest status of
// its errors (404 for an unknown route, 400 for missing or invalid
// parameters). A response verdict always becomes a 500 document: the client
// sent a valid request and the server answered outside its contract.
//
// # Usage
//
//	verdict, err := v.ValidateRequest(req)
//	if err == nil && !verdict.Valid {
//	    doc := apierrors.Translate(apierrors.ScopeRequest, verdict, req.Method)
//	    _ = doc.Write(w)
//	}
//
// Every error object carries a fresh UUID v4 id, a stable code such as
// BAD_REQUEST or INVALID_RESPONSE_BODY, and a source pointing at the offending
// parameter, header or body location.
package apierrors
