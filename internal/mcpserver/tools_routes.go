package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listRoutesInput struct {
	Contract contractInput `json:"contract"         jsonschema:"The Swagger 2.0 contract to list"`
	Method   string        `json:"method,omitempty" jsonschema:"Only routes with this HTTP method"`
	Path     string        `json:"path,omitempty"   jsonschema:"Only routes whose path template contains this substring"`
	Offset   int           `json:"offset,omitempty" jsonschema:"Skip the first N routes (for pagination)"`
	Limit    int           `json:"limit,omitempty"  jsonschema:"Maximum number of routes to return (default 100)"`
}

type routeSummary struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	OperationID string `json:"operation_id,omitempty"`
}

type listRoutesOutput struct {
	BasePath string         `json:"base_path,omitempty"`
	Total    int            `json:"total"`
	Returned int            `json:"returned"`
	Routes   []routeSummary `json:"routes,omitempty"`
}

func handleListRoutes(_ context.Context, _ *mcp.CallToolRequest, input listRoutesInput) (*mcp.CallToolResult, listRoutesOutput, error) {
	v, err := input.Contract.resolve()
	if err != nil {
		return errResult(err), listRoutesOutput{}, nil
	}

	var matched []routeSummary
	for _, r := range v.Routes() {
		if input.Method != "" && !strings.EqualFold(r.Method, input.Method) {
			continue
		}
		if input.Path != "" && !strings.Contains(r.Path, input.Path) {
			continue
		}
		matched = append(matched, routeSummary{Method: r.Method, Path: r.Path, OperationID: r.OperationID})
	}

	page := paginate(matched, input.Offset, input.Limit)
	return nil, listRoutesOutput{
		BasePath: v.Document().BasePath,
		Total:    len(matched),
		Returned: len(page),
		Routes:   page,
	}, nil
}
