package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatif-sim/configs"
	"whatif-sim/internal/domain/models"
)

// useDefaultConfig 测试期间跳过配置文件和环境变量
func useDefaultConfig(t *testing.T) {
	t.Helper()
	orig := loadConfig
	loadConfig = func(ctx context.Context, path string) (*configs.Config, error) {
		cfg := configs.DefaultConfig()
		cfg.Logging.Level = "error"
		return cfg, cfg.Validate()
	}
	t.Cleanup(func() { loadConfig = orig })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulateCmd(t *testing.T) {
	useDefaultConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"parallel", []string{"simulate", "What if everyone could read minds?"}},
		{"sequential", []string{"simulate", "--sequential", "What", "if", "everyone", "could", "read", "minds?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, "👤 Personal Scenario")
			assert.Contains(t, out, "🎯 Serious Analysis")
			assert.Contains(t, out, "🎉 Fun Interpretation")
		})
	}
}

func TestSimulateCmd_JSON(t *testing.T) {
	useDefaultConfig(t)

	out, err := run(t, "simulate", "--json", "What if everyone could read minds?")
	require.NoError(t, err)

	var result models.SimulationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	require.NotNil(t, result.FormattedOutput)
	assert.Equal(t, "personal", result.FormattedOutput.Metadata.ScenarioType)
}

func TestSimulateCmd_InvalidScenario(t *testing.T) {
	useDefaultConfig(t)

	out, err := run(t, "simulate", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detailed")
	assert.Empty(t, out)
}

func TestSimulateCmd_RequiresArgs(t *testing.T) {
	useDefaultConfig(t)

	_, err := run(t, "simulate")
	assert.Error(t, err)
}

func TestValidateCmd(t *testing.T) {
	useDefaultConfig(t)

	out, err := run(t, "validate", "  What if cats could talk?  ")
	require.NoError(t, err)
	assert.Equal(t, "valid: What if cats could talk?\n", out)

	_, err = run(t, "validate", "What if a terrorist took over the city council?")
	assert.Error(t, err)
}

func TestMCPCmd(t *testing.T) {
	useDefaultConfig(t)

	var served *server.MCPServer
	orig := serveStdio
	serveStdio = func(s *server.MCPServer, _ ...server.StdioOption) error {
		served = s
		return nil
	}
	t.Cleanup(func() { serveStdio = orig })

	_, err := run(t, "mcp")
	require.NoError(t, err)
	assert.NotNil(t, served)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(context.Background(), "/nonexistent/config.yaml")
	assert.Error(t, err)
}
