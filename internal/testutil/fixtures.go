// Package testutil provides test utilities and contract fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PetstoreYAML is an OAS 2.0 contract exercising every parameter location,
// shared parameter and response references, path-level parameters, and
// response headers. Status codes are unquoted on purpose.
const PetstoreYAML = `swagger: "2.0"
info:
  title: Petstore
  version: 1.0.0
basePath: /v1
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          type: integer
          default: 1337
        - name: tags
          in: query
          type: array
          collectionFormat: csv
          items:
            type: string
        - $ref: '#/parameters/traceId'
      responses:
        200:
          description: A list of pets
          headers:
            x-test:
              type: integer
          schema:
            type: array
            items:
              $ref: '#/definitions/Pet'
        default:
          $ref: '#/responses/Error'
    post:
      operationId: createPet
      parameters:
        - name: pet
          in: body
          required: true
          schema:
            $ref: '#/definitions/Pet'
      responses:
        201:
          description: Created
          schema:
            $ref: '#/definitions/Pet'
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        type: integer
    get:
      operationId: showPet
      parameters:
        - name: since
          in: query
          type: string
          format: date
        - name: X-Request-Count
          in: header
          type: integer
      responses:
        200:
          description: A pet
          schema:
            $ref: '#/definitions/Pet'
        404:
          $ref: '#/responses/Missing'
    delete:
      operationId: deletePet
      responses:
        204:
          description: Deleted
  /owners/{ownerId}/pets/{petId}:
    get:
      operationId: showOwnerPet
      parameters:
        - name: ownerId
          in: path
          required: true
          type: string
        - name: petId
          in: path
          required: true
          type: integer
      responses:
        200:
          description: A pet
          schema:
            $ref: '#/definitions/Pet'
  /health:
    get:
      operationId: health
      responses:
        200:
          description: Plain text status
          schema:
            type: string
parameters:
  traceId:
    name: X-Trace-Id
    in: header
    type: string
responses:
  Error:
    description: Error
    schema:
      $ref: '#/definitions/Error'
definitions:
  Pet:
    type: object
    required:
      - id
      - name
    properties:
      id:
        type: integer
        format: int64
      name:
        type: string
      tag:
        type: string
  Error:
    type: object
    required:
      - code
      - message
    properties:
      code:
        type: integer
        format: int32
      message:
        type: string
`

// WriteTempFile writes data to a file named name inside a test-scoped temporary directory.
// Returns the path to the file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary file: %v", err)
	}

	return tmpFile
}

// WritePetstore writes PetstoreYAML to a temporary file and returns its path.
func WritePetstore(t *testing.T) string {
	t.Helper()
	return WriteTempFile(t, "petstore.yaml", []byte(PetstoreYAML))
}
