// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes the oasgate contract validator as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasgate"
)

const serverInstructions = `oasgate MCP server: checks HTTP requests and responses against a Swagger 2.0 contract.

Contracts are passed as a file path or inline content. Use list_routes first to see which operations a contract declares, then validate_request and validate_response to check concrete traffic. Each verdict includes the JSON:API error document the oasgate middleware would answer with.

Configuration: defaults are set through OASGATE_* environment variables in your MCP client config.

Key settings:
- OASGATE_STRICT_CONTRACT (default: false): reject contracts with authoring errors
- OASGATE_EXCEPTIONS: comma-separated regexps of paths that pass without a route
- OASGATE_REDACT_HEADERS (default: false): omit header values from violations
- OASGATE_ERROR_LIMIT (default: 100): default page size for errors and routes
- OASGATE_CACHE_ENABLED (default: true): cache compiled contracts per session
- OASGATE_CACHE_FILE_TTL (default: 15m): cache TTL for file contracts

Caching: compiled contracts are cached per session. File entries use path+mtime as key, so edits are picked up on the next call.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	return newServer(ctx).Run(ctx, &mcp.StdioTransport{})
}

func newServer(ctx context.Context) *mcp.Server {
	if cfg.CacheEnabled {
		validatorCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasgate", Version: oasgate.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_request",
		Description: "Validate an HTTP request against a Swagger 2.0 contract. Provide method, url (path with optional query string), headers, and the request body as parsed JSON or a form field map. Returns whether the request is valid, every violation with its kind and location, the coerced parameter values, and the JSON:API error document the middleware would send. Use offset/limit to paginate errors.",
	}, handleValidateRequest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_response",
		Description: "Validate an HTTP response against the operation of the request that produced it. Provide the request method and url, the response status code, response headers (repeated headers as several values), and the raw response body. Checks that the status is declared, required headers are present and valid, and the body matches the response schema.",
	}, handleValidateResponse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_routes",
		Description: "List the operations declared by a Swagger 2.0 contract as method, path template and operationId, in declaration order. Filter by method or by a path substring. Use offset/limit to paginate.",
	}, handleListRoutes)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ErrorLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ErrorLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
