package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/erraggy/oasgate/contract"
	"github.com/erraggy/oasgate/httpvalidator"
	"github.com/erraggy/oasgate/middleware"
)

const exampleContract = `
swagger: "2.0"
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          type: integer
      responses:
        200:
          description: Success
`

func ExampleMiddleware_Handler() {
	doc, err := contract.Parse([]byte(exampleContract))
	if err != nil {
		fmt.Println("Parse error:", err)
		return
	}
	v, err := httpvalidator.New(doc)
	if err != nil {
		fmt.Println("Validator error:", err)
		return
	}
	mw, err := middleware.New(v)
	if err != nil {
		fmt.Println("Middleware error:", err)
		return
	}

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verdict, _ := middleware.VerdictFromContext(r.Context())
		fmt.Println("handled pet", verdict.Values["petId"])
	}))

	for _, target := range []string{"/pets/42", "/pets/rex", "/owners"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		fmt.Println(target, rec.Code)
	}

	// Output:
	// handled pet 42
	// /pets/42 200
	// /pets/rex 400
	// /owners 404
}
