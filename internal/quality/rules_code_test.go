package quality

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCodeQualityDetectsHardcodedSecret(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.py")
	require.NoError(t, os.WriteFile(path, []byte(`api_key = "sk-12345"`+"\n"), 0644))

	violations := ScanCodeQuality("auth", dir)
	require.Len(t, violations, 1)
	assert.Equal(t, string(RuleSecScan001), violations[0].Code)
}

func TestScanCodeQualitySkipsTestFixtures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "test"), 0755))
	path := filepath.Join(dir, "test", "fixture.py")
	require.NoError(t, os.WriteFile(path, []byte(`password = "not-a-real-secret"`+"\n"), 0644))

	violations := ScanCodeQuality("auth", dir)
	assert.Empty(t, violations)
}

func TestScanCodeQualityDetectsPrintStatements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("print(\"debug\")\n"), 0644))

	violations := ScanCodeQuality("auth", dir)
	require.Len(t, violations, 1)
	assert.Equal(t, string(RuleLog001), violations[0].Code)
}

func TestScanCORSDetectsWildcardOrigin(t *testing.T) {
	violations := ScanCORS("auth", "config.yaml", `cors:\n  origin: "*"`)
	require.Len(t, violations, 1)
	assert.Equal(t, string(RuleCORS001), violations[0].Code)
}

func TestScanCORSIgnoresUnrelatedWildcard(t *testing.T) {
	violations := ScanCORS("auth", "config.yaml", `routes: "*"`)
	assert.Empty(t, violations)
}

func TestScanRequestLoggingFlagsMissingMiddleware(t *testing.T) {
	violations := ScanRequestLogging([]RouteLoggingCheck{
		{ServiceName: "auth", Route: "/login", HasLogging: true},
		{ServiceName: "auth", Route: "/register", HasLogging: false},
	})
	require.Len(t, violations, 1)
	assert.Equal(t, "/register", violations[0].Endpoint)
}

func TestScanDockerfilesFlagsMissingHealthcheckAndLatestTag(t *testing.T) {
	violations := ScanDockerfiles("auth", "Dockerfile", "FROM python:latest\nCMD [\"run\"]\n")
	require.Len(t, violations, 2)
}

func TestScanDockerfilesCleanDockerfilePassesBoth(t *testing.T) {
	violations := ScanDockerfiles("auth", "Dockerfile", "FROM python:3.12\nHEALTHCHECK CMD curl -f http://localhost/health\n")
	assert.Empty(t, violations)
}
