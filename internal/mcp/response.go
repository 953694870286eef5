package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure inside the result so the client can see and correct it
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"type":      saucoerrors.TypeOf(err),
		"operation": operation,
	}
	if help := operationHelp[operation]; help != "" {
		errorData["help"] = help
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

var operationHelp = map[string]string{
	"analyze_code": `Use: {"code": "def f():\n    return 1", "grammar": "python"}`,
	"compare_code": `Use: {"before": "<old source>", "after": "<new source>", "grammar": "python"}`,
	"analyze_file": `Use: {"path": "src/app.py"} with a path inside the project root`,
}
