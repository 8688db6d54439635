package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRoutesTool(t *testing.T) {
	tests := []struct {
		name      string
		input     listRoutesInput
		wantTotal int
		wantFirst routeSummary
	}{
		{
			name:      "all routes",
			input:     listRoutesInput{},
			wantTotal: 6,
			wantFirst: routeSummary{Method: "GET", Path: "/pets", OperationID: "listPets"},
		},
		{
			name:      "method filter is case insensitive",
			input:     listRoutesInput{Method: "delete"},
			wantTotal: 1,
			wantFirst: routeSummary{Method: "DELETE", Path: "/pets/{petId}", OperationID: "deletePet"},
		},
		{
			name:      "path filter",
			input:     listRoutesInput{Path: "owners"},
			wantTotal: 1,
			wantFirst: routeSummary{Method: "GET", Path: "/owners/{ownerId}/pets/{petId}", OperationID: "showOwnerPet"},
		},
		{
			name:      "paginated",
			input:     listRoutesInput{Offset: 2, Limit: 2},
			wantTotal: 6,
			wantFirst: routeSummary{Method: "GET", Path: "/pets/{petId}", OperationID: "showPet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Contract = petstoreInput
			result, output, err := handleListRoutes(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.Nil(t, result)

			assert.Equal(t, "/v1", output.BasePath)
			assert.Equal(t, tt.wantTotal, output.Total)
			assert.Equal(t, len(output.Routes), output.Returned)
			require.NotEmpty(t, output.Routes)
			assert.Equal(t, tt.wantFirst, output.Routes[0])
		})
	}
}

func TestListRoutesTool_NoMatch(t *testing.T) {
	_, output, err := handleListRoutes(context.Background(), &mcp.CallToolRequest{}, listRoutesInput{
		Contract: petstoreInput,
		Method:   "PATCH",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, output.Total)
	assert.Empty(t, output.Routes)
}

func TestListRoutesTool_BadContract(t *testing.T) {
	result, _, err := handleListRoutes(context.Background(), &mcp.CallToolRequest{}, listRoutesInput{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
