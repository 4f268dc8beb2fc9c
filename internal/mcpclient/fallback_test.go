package mcpclient

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposerFallbackScansServiceNames(t *testing.T) {
	prd := "The system has an Auth Service, an Order Service, and a Notification service that all communicate over HTTP."

	result := DecomposerFallback(prd)
	assert.True(t, IsFallback(result))

	services, ok := result["services"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"auth", "order", "notification"}, services)
}

func TestDecomposerFallbackEmptyPRDYieldsEmptyList(t *testing.T) {
	result := DecomposerFallback("no services mentioned here")
	services, ok := result["services"].([]string)
	require.True(t, ok)
	assert.Empty(t, services)
	assert.True(t, IsFallback(result))
}

func TestScanAPIContractsCountsParseableFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"ok": true}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("ok: true"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d.json"), []byte("{not valid"), 0644))

	results := ScanAPIContracts(dir)
	assert.Len(t, results, 3)

	parseableCount := 0
	for _, r := range results {
		assert.True(t, IsFallback(r))
		if r["parseable"] == true {
			parseableCount++
		}
	}
	assert.Equal(t, 2, parseableCount)
}

func TestGenerateCodebaseMapClassifiesByExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("print('x')"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("doc"), 0644))

	result := GenerateCodebaseMap(dir)
	assert.True(t, IsFallback(result))

	counts, ok := result["language_counts"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1, counts["go"])
	assert.Equal(t, 1, counts["python"])
	assert.Equal(t, 1, counts["other"])
}
