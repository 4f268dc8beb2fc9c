package mcpclient

import "context"

// ContractClient is the typed façade over the contract MCP worker.
type ContractClient struct {
	session *Session
}

// NewContractClient wraps session.
func NewContractClient(session *Session) *ContractClient {
	return &ContractClient{session: session}
}

func (c *ContractClient) CreateContract(ctx context.Context, args map[string]interface{}) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "create_contract", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "create_contract", args)
		return payload, err
	})
}

func (c *ContractClient) ValidateSpec(ctx context.Context, args map[string]interface{}) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "validate_spec", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "validate_spec", args)
		return payload, err
	})
}

func (c *ContractClient) ListContracts(ctx context.Context) []interface{} {
	return callWithSafeDefault[[]interface{}](ctx, "MCPClient", "list_contracts", []interface{}{}, func(ctx context.Context) ([]interface{}, error) {
		return c.session.callToolList(ctx, "list_contracts", nil)
	})
}

func (c *ContractClient) GetContract(ctx context.Context, name string) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "get_contract", nil, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "get_contract", map[string]interface{}{"name": name})
		return payload, err
	})
}

func (c *ContractClient) ValidateEndpoint(ctx context.Context, args map[string]interface{}) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "validate_endpoint", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "validate_endpoint", args)
		return payload, err
	})
}

// GenerateTests is the one MCP response that is raw source text, not JSON.
func (c *ContractClient) GenerateTests(ctx context.Context, args map[string]interface{}) string {
	return callWithSafeDefault[string](ctx, "MCPClient", "generate_tests", "", func(ctx context.Context) (string, error) {
		return c.session.callToolText(ctx, "generate_tests", args)
	})
}

func (c *ContractClient) CheckBreakingChanges(ctx context.Context, args map[string]interface{}) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "check_breaking_changes", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "check_breaking_changes", args)
		return payload, err
	})
}

func (c *ContractClient) MarkImplemented(ctx context.Context, name string) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "mark_implemented", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "mark_implemented", map[string]interface{}{"name": name})
		return payload, err
	})
}

func (c *ContractClient) GetUnimplementedContracts(ctx context.Context) []interface{} {
	return callWithSafeDefault[[]interface{}](ctx, "MCPClient", "get_unimplemented_contracts", []interface{}{}, func(ctx context.Context) ([]interface{}, error) {
		return c.session.callToolList(ctx, "get_unimplemented_contracts", nil)
	})
}
