package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode unmarshals the arguments of a tool call into T. Errors name the
// tool so a client batching several calls can tell which one was rejected.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("%s: encode arguments: %w", toolLabel(req), err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("%s: invalid arguments: %w", toolLabel(req), err)
	}
	return result, nil
}

func toolLabel(req mcp.CallToolRequest) string {
	if req.Params.Name == "" {
		return "tool call"
	}
	return req.Params.Name
}
