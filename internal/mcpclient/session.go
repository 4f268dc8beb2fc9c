// Package mcpclient implements the stdio-framed RPC session model over
// which the pipeline talks to the three MCP worker processes (decomposer,
// contract, code-intel), plus the retry/safe-default discipline and
// filesystem fallbacks that keep the pipeline running when a worker is
// unavailable.
package mcpclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"svcaudit/pkg/logging"
)

// DefaultStartupTimeout bounds the subprocess spawn + initialize handshake.
const DefaultStartupTimeout = 10 * time.Second

// DefaultFirstStartTimeout is the longer warm-up grace for a worker's very
// first invocation in a run. Nothing in this package applies it on its own;
// the pipeline's mcp_smoke phase passes its configured first-start timeout
// to CheckHealth instead.
const DefaultFirstStartTimeout = 30 * time.Second

// SessionSpec addresses one independently spawnable MCP worker subprocess.
type SessionSpec struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string
}

// Session is a scoped acquisition of an MCP worker subprocess: opening it
// spawns the process and performs the initialize handshake; closing
// guarantees the subprocess is signaled and reaped on every exit path.
type Session struct {
	spec      SessionSpec
	mu        sync.Mutex
	client    *client.Client
	connected bool
	toolNames []string
}

// Open spawns the worker named by spec, performs the MCP initialize
// handshake and a ListTools call, and returns a ready Session.
func Open(ctx context.Context, spec SessionSpec, startupTimeout time.Duration) (*Session, error) {
	if startupTimeout <= 0 {
		startupTimeout = DefaultStartupTimeout
	}

	var envStrings []string
	for k, v := range spec.Env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}

	logging.Debug("MCPClient", "spawning worker %s: %s %v", spec.Name, spec.Command, spec.Args)
	logging.Audit(logging.AuditEvent{
		Action:  "subprocess_spawn",
		Outcome: "attempted",
		Target:  spec.Name,
		Details: fmt.Sprintf("%d env vars passed", len(spec.Env)),
	})

	mcpClient, err := client.NewStdioMCPClient(spec.Command, envStrings, spec.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn mcp worker %s: %w", spec.Name, err)
	}

	initCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	initResult, err := mcpClient.Initialize(initCtx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo: mcp.Implementation{
				Name:    "svcaudit",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("failed to initialize mcp worker %s: %w", spec.Name, err)
	}
	_ = initResult

	toolsResult, err := mcpClient.ListTools(initCtx, mcp.ListToolsRequest{})
	var toolNames []string
	if err == nil {
		for _, tool := range toolsResult.Tools {
			toolNames = append(toolNames, tool.Name)
		}
	}

	return &Session{
		spec:      spec,
		client:    mcpClient,
		connected: true,
		toolNames: toolNames,
	}, nil
}

// WithSession opens a session for spec, runs fn, and guarantees Close runs
// on every exit path including a panic inside fn (the panic is re-raised
// after cleanup).
func WithSession(ctx context.Context, spec SessionSpec, startupTimeout time.Duration, fn func(*Session) error) error {
	session, err := Open(ctx, spec, startupTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logging.Warn("MCPClient", "error closing session %s: %v", spec.Name, closeErr)
		}
	}()

	return fn(session)
}

// Close signals and reaps the underlying subprocess. It is safe to call
// more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || s.client == nil {
		return nil
	}

	err := s.client.Close()
	s.connected = false
	s.client = nil
	return err
}

// ToolNames returns the tool names observed at handshake time.
func (s *Session) ToolNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.toolNames...)
}

// rawCall issues one tool call with no retry logic. It is the single place
// that touches the underlying mcp-go client, guarded by the session mutex.
func (s *Session) rawCall(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || s.client == nil {
		return nil, fmt.Errorf("session %s is not connected", s.spec.Name)
	}

	result, err := s.client.CallTool(ctx, mcp.CallToolRequest{
		Params: struct {
			Name      string    `json:"name"`
			Arguments any       `json:"arguments,omitempty"`
			Meta      *mcp.Meta `json:"_meta,omitempty"`
		}{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tool call %s failed: %w", name, err)
	}

	return result, nil
}

// CheckHealth is the convenience health-probe wrapper: open, initialize,
// list tools, close — folded into a single status record.
func CheckHealth(ctx context.Context, spec SessionSpec, timeout time.Duration) (healthStatus string, toolsCount int, toolNames []string, errMsg string) {
	session, err := Open(ctx, spec, timeout)
	if err != nil {
		return "unhealthy", 0, nil, err.Error()
	}
	defer session.Close()

	names := session.ToolNames()
	return "healthy", len(names), names, ""
}
