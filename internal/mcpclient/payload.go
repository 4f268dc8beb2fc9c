package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// extractText returns the concatenated text content of an MCP call result.
func extractText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var text string
	for _, content := range result.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			text += tc.Text
		}
	}
	return text
}

// callToolJSON issues a tool call and parses its text content as a JSON
// object. A malformed payload is not fatal — it surfaces as an error result
// rather than panicking.
func (s *Session) callToolJSON(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, bool, error) {
	result, err := s.rawCall(ctx, name, args)
	if err != nil {
		return nil, true, err
	}
	if result.IsError {
		return nil, true, fmt.Errorf("tool %s reported an error: %s", name, extractText(result))
	}

	text := extractText(result)
	if text == "" {
		return map[string]interface{}{}, false, nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, true, fmt.Errorf("tool %s returned a malformed JSON payload: %w", name, err)
	}
	return payload, false, nil
}

// callToolText issues a tool call and returns its raw text content without
// attempting JSON parsing — used for generate_tests, the one MCP response
// that is raw source code rather than JSON.
func (s *Session) callToolText(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	result, err := s.rawCall(ctx, name, args)
	if err != nil {
		return "", err
	}
	if result.IsError {
		return "", fmt.Errorf("tool %s reported an error: %s", name, extractText(result))
	}
	return extractText(result), nil
}

// callToolList issues a tool call and interprets its JSON payload as a
// top-level array.
func (s *Session) callToolList(ctx context.Context, name string, args map[string]interface{}) ([]interface{}, error) {
	result, err := s.rawCall(ctx, name, args)
	if err != nil {
		return nil, err
	}
	if result.IsError {
		return nil, fmt.Errorf("tool %s reported an error: %s", name, extractText(result))
	}

	text := extractText(result)
	if text == "" {
		return []interface{}{}, nil
	}

	var payload []interface{}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("tool %s returned a non-array JSON payload: %w", name, err)
	}
	return payload, nil
}
