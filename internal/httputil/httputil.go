// Package httputil provides HTTP status code and media type helpers shared by
// contract checks and the middleware.
package httputil

import (
	"mime"
	"strconv"
	"strings"
)

// HTTP Status Code Constants
const (
	StatusCodeLength = 3   // Standard length of HTTP status codes (e.g., "200", "404")
	MinStatusCode    = 100 // Minimum valid HTTP status code
	MaxStatusCode    = 599 // Maximum valid HTTP status code
)

// HTTP Method Constants, in the lower-case form used as contract keys.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
)

// Methods lists the operation methods of an OAS 2.0 path item.
var Methods = []string{MethodGet, MethodPut, MethodPost, MethodDelete, MethodOptions, MethodHead, MethodPatch}

// ValidateStatusCode checks if a responses key is valid for OAS 2.0.
// Valid values are:
//   - "default" for default response
//   - Extension fields starting with "x-"
//   - Numeric codes: 100-599
func ValidateStatusCode(code string) bool {
	if code == "default" || strings.HasPrefix(code, "x-") {
		return true
	}
	if len(code) != StatusCodeLength {
		return false
	}
	statusCode, err := strconv.Atoi(code)
	return err == nil && statusCode >= MinStatusCode && statusCode <= MaxStatusCode
}

// MediaType returns the lower-case media type of a Content-Type header value
// without parameters. It returns "" when the value does not parse.
func MediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

// IsJSONMediaType reports whether the Content-Type denotes a JSON payload,
// including structured syntax suffixes such as "application/problem+json".
func IsJSONMediaType(contentType string) bool {
	mt := MediaType(contentType)
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// IsFormMediaType reports whether the Content-Type denotes a form payload.
func IsFormMediaType(contentType string) bool {
	mt := MediaType(contentType)
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}
