// Package integration drives the contract/property tester against each
// deployed service's OpenAPI document and runs the fixed cross-service
// integration scenario.
package integration

import "svcaudit/internal/statestore"

// IntegrationReport is the result handed to the quality gate's Layer 2.
type IntegrationReport struct {
	ServicesDeployed        int                             `json:"services_deployed"`
	ServicesHealthy         int                             `json:"services_healthy"`
	ContractTestsPassed     int                             `json:"contract_tests_passed"`
	ContractTestsTotal      int                             `json:"contract_tests_total"`
	IntegrationTestsPassed  int                             `json:"integration_tests_passed"`
	IntegrationTestsTotal   int                             `json:"integration_tests_total"`
	DataFlowTestsPassed     int                             `json:"data_flow_tests_passed"`
	DataFlowTestsTotal      int                             `json:"data_flow_tests_total"`
	BoundaryTestsPassed     int                             `json:"boundary_tests_passed"`
	BoundaryTestsTotal      int                             `json:"boundary_tests_total"`
	Violations              []statestore.ContractViolation `json:"violations"`
	OverallHealth           string                          `json:"overall_health"`
}

// ServiceEndpoint addresses one deployed service for contract testing.
type ServiceEndpoint struct {
	Name        string
	OpenAPIURL  string
	AuthLoginURL string // preliminary POST /login for stateful auth
}

// ContractTestOutcome is what the external property-testing tool reports
// for one service, parsed into a compliance ratio.
type ContractTestOutcome struct {
	ServiceName     string
	Passed          int
	Total           int
	ComplianceRatio float64
	Violations      []statestore.ContractViolation
}
