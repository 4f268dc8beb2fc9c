package quality

import "svcaudit/internal/statestore"

// ServiceInventory is the cross-service facts Layer 4's static-analysis
// rules need, gathered from the decomposer's service map, the contract
// catalog, the proxy's route table, and the event bus's publish/consume
// records. Each field is the minimal set a rule needs, not a full model.
type ServiceInventory struct {
	EventsPublished      []string          // event names published anywhere
	EventsConsumed       []string          // event names consumed anywhere
	ContractsRegistered  []string          // contract IDs registered
	ContractsValidated   []string          // contract IDs exercised by ValidateEndpoint/property tests
	ManifestServiceNames []string          // service names present in the compose manifest
	ProxyRoutedServices  []string          // service names with a proxy route
	CodeServiceNames     []string          // service names as they appear in generated code/config
	ContractServiceNames []string          // service names as they appear in registered contracts
}

// ScanStaticAnalysis evaluates the cross-service static analysis rule set:
// DEAD-001, DEAD-002, ORPHAN-001, NAME-001.
func ScanStaticAnalysis(inv ServiceInventory) []statestore.ContractViolation {
	var violations []statestore.ContractViolation

	consumed := toSet(inv.EventsConsumed)
	for _, e := range inv.EventsPublished {
		if !consumed[e] {
			violations = append(violations, statestore.ContractViolation{
				Code:     string(RuleDead001),
				Severity: severityForRule[RuleDead001],
				Message:  "event \"" + e + "\" is published but never consumed",
			})
		}
	}

	validated := toSet(inv.ContractsValidated)
	for _, c := range inv.ContractsRegistered {
		if !validated[c] {
			violations = append(violations, statestore.ContractViolation{
				Code:     string(RuleDead002),
				Severity: severityForRule[RuleDead002],
				Message:  "contract \"" + c + "\" is registered but never validated",
			})
		}
	}

	routed := toSet(inv.ProxyRoutedServices)
	for _, s := range inv.ManifestServiceNames {
		if !routed[s] {
			violations = append(violations, statestore.ContractViolation{
				Code:     string(RuleOrphan001),
				Severity: severityForRule[RuleOrphan001],
				Service:  s,
				Message:  "service present in manifest has no proxy route",
			})
		}
	}

	violations = append(violations, scanNamingConsistency(inv)...)

	return violations
}

func scanNamingConsistency(inv ServiceInventory) []statestore.ContractViolation {
	manifest := toSet(inv.ManifestServiceNames)
	code := toSet(inv.CodeServiceNames)
	contract := toSet(inv.ContractServiceNames)

	var violations []statestore.ContractViolation
	for name := range manifest {
		if !code[name] || !contract[name] {
			violations = append(violations, statestore.ContractViolation{
				Code:     string(RuleName001),
				Severity: severityForRule[RuleName001],
				Service:  name,
				Message:  "service name inconsistent across manifest, code, and contracts",
			})
		}
	}
	return violations
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
