package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"svcaudit/internal/statestore"
)

func TestScanStaticAnalysisDetectsUnconsumedEvent(t *testing.T) {
	violations := ScanStaticAnalysis(ServiceInventory{
		EventsPublished: []string{"order.created"},
		EventsConsumed:  []string{},
	})
	assertHasCode(t, violations, RuleDead001)
}

func TestScanStaticAnalysisDetectsUnvalidatedContract(t *testing.T) {
	violations := ScanStaticAnalysis(ServiceInventory{
		ContractsRegistered: []string{"auth-v1"},
		ContractsValidated:  []string{},
	})
	assertHasCode(t, violations, RuleDead002)
}

func TestScanStaticAnalysisDetectsOrphanService(t *testing.T) {
	violations := ScanStaticAnalysis(ServiceInventory{
		ManifestServiceNames: []string{"auth", "order"},
		ProxyRoutedServices:  []string{"auth"},
	})
	assertHasCode(t, violations, RuleOrphan001)
}

func TestScanStaticAnalysisDetectsNameInconsistency(t *testing.T) {
	violations := ScanStaticAnalysis(ServiceInventory{
		ManifestServiceNames: []string{"order-service"},
		CodeServiceNames:     []string{"orderservice"},
		ContractServiceNames: []string{"order-service"},
	})
	assertHasCode(t, violations, RuleName001)
}

func TestScanStaticAnalysisCleanInventoryYieldsNoViolations(t *testing.T) {
	violations := ScanStaticAnalysis(ServiceInventory{
		EventsPublished:      []string{"order.created"},
		EventsConsumed:       []string{"order.created"},
		ContractsRegistered:  []string{"auth-v1"},
		ContractsValidated:   []string{"auth-v1"},
		ManifestServiceNames: []string{"auth"},
		ProxyRoutedServices:  []string{"auth"},
		CodeServiceNames:     []string{"auth"},
		ContractServiceNames: []string{"auth"},
	})
	assert.Empty(t, violations)
}

func assertHasCode(t *testing.T, violations []statestore.ContractViolation, code RuleCode) {
	t.Helper()
	for _, v := range violations {
		if v.Code == string(code) {
			return
		}
	}
	t.Fatalf("expected a violation with code %s, got %+v", code, violations)
}
