package compose

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mockExecCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestComposeHelperProcess", "--", name}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

func TestComposeHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		os.Exit(2)
	}

	for i, a := range args {
		if a == "ps" && i+1 < len(args) {
			os.Stdout.WriteString(`{"Service":"auth","Health":"healthy","State":"running"}` + "\n")
			os.Stdout.WriteString(`{"Service":"order","Health":"healthy","State":"running"}` + "\n")
			return
		}
	}
}

func TestGenerateManifestWritesBackendOnlyServices(t *testing.T) {
	dir := t.TempDir()
	outputs := []BuilderOutput{
		{ServiceName: "auth", ComposeFile: filepath.Join(dir, "auth", "docker-compose.yaml")},
		{ServiceName: "order", ComposeFile: filepath.Join(dir, "order", "docker-compose.yaml")},
	}

	path, err := GenerateManifest(dir, outputs)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc manifestDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Len(t, doc.Services, 2)
	assert.Contains(t, doc.Services["auth"].Networks, NetworkBackend)
	assert.NotContains(t, doc.Services["auth"].Networks, NetworkFrontend)
}

func TestUpAndDownShellOutToDockerCompose(t *testing.T) {
	oldExec := execCommandContext
	execCommandContext = mockExecCommandContext
	defer func() { execCommandContext = oldExec }()

	manifests := []string{"/tmp/base.yaml", "/tmp/overrides.yaml"}
	assert.NoError(t, Up(context.Background(), manifests))
	assert.NoError(t, Down(context.Background(), manifests))
}

func TestWaitHealthyReturnsOnceAllServicesHealthy(t *testing.T) {
	oldExec := execCommandContext
	execCommandContext = mockExecCommandContext
	defer func() { execCommandContext = oldExec }()

	result, err := WaitHealthy(context.Background(), []string{"/tmp/base.yaml"}, 2*time.Second)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"auth", "order"}, result.ServicesHealthy)
	assert.Empty(t, result.Failures)
}
