package mcpclient

import "context"

// CodeIntelClient is the typed façade over the code-intel MCP worker.
type CodeIntelClient struct {
	session *Session
}

// NewCodeIntelClient wraps session.
func NewCodeIntelClient(session *Session) *CodeIntelClient {
	return &CodeIntelClient{session: session}
}

func (c *CodeIntelClient) FindDefinition(ctx context.Context, symbol string) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "find_definition", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "find_definition", map[string]interface{}{"symbol": symbol})
		return payload, err
	})
}

func (c *CodeIntelClient) FindCallers(ctx context.Context, symbol string) []interface{} {
	return callWithSafeDefault[[]interface{}](ctx, "MCPClient", "find_callers", []interface{}{}, func(ctx context.Context) ([]interface{}, error) {
		return c.session.callToolList(ctx, "find_callers", map[string]interface{}{"symbol": symbol})
	})
}

func (c *CodeIntelClient) FindDependencies(ctx context.Context, serviceName string) []interface{} {
	return callWithSafeDefault[[]interface{}](ctx, "MCPClient", "find_dependencies", []interface{}{}, func(ctx context.Context) ([]interface{}, error) {
		return c.session.callToolList(ctx, "find_dependencies", map[string]interface{}{"service_name": serviceName})
	})
}

func (c *CodeIntelClient) SearchSemantic(ctx context.Context, query string) []interface{} {
	return callWithSafeDefault[[]interface{}](ctx, "MCPClient", "search_semantic", []interface{}{}, func(ctx context.Context) ([]interface{}, error) {
		return c.session.callToolList(ctx, "search_semantic", map[string]interface{}{"query": query})
	})
}

func (c *CodeIntelClient) GetServiceInterface(ctx context.Context, serviceName string) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "get_service_interface", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "get_service_interface", map[string]interface{}{"service_name": serviceName})
		return payload, err
	})
}

func (c *CodeIntelClient) CheckDeadCode(ctx context.Context, serviceName string) []interface{} {
	return callWithSafeDefault[[]interface{}](ctx, "MCPClient", "check_dead_code", []interface{}{}, func(ctx context.Context) ([]interface{}, error) {
		return c.session.callToolList(ctx, "check_dead_code", map[string]interface{}{"service_name": serviceName})
	})
}

func (c *CodeIntelClient) RegisterArtifact(ctx context.Context, args map[string]interface{}) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "register_artifact", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "register_artifact", args)
		return payload, err
	})
}
