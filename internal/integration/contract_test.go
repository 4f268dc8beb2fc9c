package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svcaudit/internal/statestore"
)

type fakeTester struct {
	outcome ContractTestOutcome
	err     error
}

func (f *fakeTester) RunPropertyTests(ctx context.Context, openapiURL, authToken string, stateful bool) (ContractTestOutcome, error) {
	return f.outcome, f.err
}

func TestLoginReturnsTokenOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"abc123"}`))
	}))
	defer srv.Close()

	tok, err := login(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok)
}

func TestLoginEmptyURLReturnsNoTokenNoError(t *testing.T) {
	tok, err := login(context.Background(), http.DefaultClient, "")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestLoginNonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := login(context.Background(), srv.Client(), srv.URL)
	assert.Error(t, err)
}

func TestRunContractTestsAggregatesAcrossServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok"}`))
	}))
	defer srv.Close()

	tester := &fakeTester{outcome: ContractTestOutcome{
		ServiceName:     "auth",
		Passed:          8,
		Total:           10,
		ComplianceRatio: 0.8,
		Violations:      []statestore.ContractViolation{{Code: "CT-001", Severity: statestore.SeverityError}},
	}}

	endpoints := []ServiceEndpoint{
		{Name: "auth", OpenAPIURL: "http://auth/openapi.json", AuthLoginURL: srv.URL},
	}

	outcomes := RunContractTests(context.Background(), tester, endpoints)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 8, outcomes[0].Passed)
	assert.Len(t, aggregateViolations(outcomes), 1)
}

func TestRunContractTestsFailingServiceContributesZeroCompliance(t *testing.T) {
	tester := &fakeTester{err: assertErr{}}
	endpoints := []ServiceEndpoint{{Name: "order", OpenAPIURL: "http://order/openapi.json"}}

	outcomes := RunContractTests(context.Background(), tester, endpoints)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 0, outcomes[0].Passed)
	assert.Equal(t, 1, outcomes[0].Total)
}

type assertErr struct{}

func (assertErr) Error() string { return "tester unavailable" }
