package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DecomposerClient is the typed façade over the decomposer MCP worker.
type DecomposerClient struct {
	session          *Session
	contractsBaseURL string // for the cross-session get_contracts_for_service call
	httpClient       *http.Client
}

// NewDecomposerClient wraps session. contractsBaseURL is the contract
// worker's HTTP endpoint used by GetContractsForService's cross-session call.
func NewDecomposerClient(session *Session, contractsBaseURL string) *DecomposerClient {
	return &DecomposerClient{
		session:          session,
		contractsBaseURL: contractsBaseURL,
		httpClient:       &http.Client{Timeout: 5 * time.Second},
	}
}

// Decompose turns a PRD into a ServiceMap + DomainModel. On any failure it
// returns nil, the safe default for an optional dict result.
func (c *DecomposerClient) Decompose(ctx context.Context, prdText string) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "decompose", nil, func(ctx context.Context) (map[string]interface{}, error) {
		payload, isErr, err := c.session.callToolJSON(ctx, "decompose", map[string]interface{}{"prd_text": prdText})
		if err != nil {
			return nil, err
		}
		if isErr {
			return nil, fmt.Errorf("decompose returned an error result")
		}
		return payload, nil
	})
}

// GetServiceMap returns the service map derived by the last Decompose call.
func (c *DecomposerClient) GetServiceMap(ctx context.Context) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "get_service_map", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "get_service_map", nil)
		return payload, err
	})
}

// GetDomainModel returns the domain entity model derived by Decompose.
func (c *DecomposerClient) GetDomainModel(ctx context.Context) map[string]interface{} {
	return callWithSafeDefault[map[string]interface{}](ctx, "MCPClient", "get_domain_model", map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
		payload, _, err := c.session.callToolJSON(ctx, "get_domain_model", nil)
		return payload, err
	})
}

// GetContractsForService makes the one cross-session call in the system.
// With no contract-worker base URL it asks the decomposer worker's
// get_contracts_for_service tool, which resolves the contracts via an HTTP
// call to the contract worker. With a base URL it fetches
// <base>/contracts/<service> from the contract worker itself, under an
// explicit 5s timeout that does not inherit an ambient default. Failure
// returns an empty list.
func (c *DecomposerClient) GetContractsForService(ctx context.Context, serviceName string) []interface{} {
	return callWithSafeDefault[[]interface{}](ctx, "MCPClient", "get_contracts_for_service", []interface{}{}, func(ctx context.Context) ([]interface{}, error) {
		if c.contractsBaseURL == "" {
			payload, err := c.session.callToolList(ctx, "get_contracts_for_service", map[string]interface{}{"service_name": serviceName})
			return payload, err
		}

		reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		url := fmt.Sprintf("%s/contracts/%s", c.contractsBaseURL, serviceName)
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("contract worker returned status %d", resp.StatusCode)
		}

		var contracts []interface{}
		if err := json.NewDecoder(resp.Body).Decode(&contracts); err != nil {
			return nil, err
		}
		return contracts, nil
	})
}
