package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	ConfigFileEnv,
	"CPI_LOGGING_LEVEL", "CPI_LOGGING_FORMAT", "CPI_LOGGING_OUTPUT", "CPI_LOGGING_FILE_PATH",
	"CPI_PATHS_DATA_DIR", "CPI_PATHS_REPORTS_DIR", "CPI_PATHS_LOGS_DIR",
	"CPI_TREE_CHARACTERS", "CPI_TREE_ROOT_CODE", "CPI_TREE_ROOT_NAME", "CPI_TREE_WORKERS",
	"CPI_SPLICE_MODE",
	"CPI_TELEMETRY_SERVICE_NAME", "CPI_TELEMETRY_METRICS_FILE", "CPI_TELEMETRY_TRACE_STDOUT",
}

// clearEnv unsets every CPI variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cpikit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "environment variables",
			env: map[string]string{
				"CPI_LOGGING_LEVEL":          "debug",
				"CPI_LOGGING_FORMAT":         "text",
				"CPI_TREE_CHARACTERS":        "3,4,7",
				"CPI_TREE_ROOT_NAME":         "IPC",
				"CPI_TREE_WORKERS":           "8",
				"CPI_SPLICE_MODE":            "yoy",
				"CPI_TELEMETRY_TRACE_STDOUT": "true",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.Equal(t, []int{3, 4, 7}, cfg.Tree.Characters)
				assert.Equal(t, "IPC", cfg.Tree.RootName)
				assert.Equal(t, 8, cfg.Tree.Workers)
				assert.Equal(t, "yoy", cfg.Splice.Mode)
				assert.True(t, cfg.Telemetry.TraceStdout)
			},
		},
		{
			name: "file values",
			file: `
logging:
  level: warn
  output: both
tree:
  characters: [3, 4, 5, 7]
  root_code: "_0"
  root_name: "IPC Guatemala"
telemetry:
  metrics_file: reports/metrics.prom
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, []int{3, 4, 5, 7}, cfg.Tree.Characters)
				assert.Equal(t, "IPC Guatemala", cfg.Tree.RootName)
				assert.Equal(t, "reports/metrics.prom", cfg.Telemetry.MetricsFile)
				assert.Equal(t, 4, cfg.Tree.Workers)
			},
		},
		{
			name: "environment beats file",
			env: map[string]string{
				"CPI_LOGGING_LEVEL":   "error",
				"CPI_TREE_CHARACTERS": "2,4",
			},
			file: `
logging:
  level: warn
tree:
  characters: [3, 4, 5, 7]
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "error", cfg.Logging.Level)
				assert.Equal(t, []int{2, 4}, cfg.Tree.Characters)
			},
		},
		{
			name:    "invalid level",
			env:     map[string]string{"CPI_LOGGING_LEVEL": "verbose"},
			wantErr: "Level",
		},
		{
			name:    "single depth",
			env:     map[string]string{"CPI_TREE_CHARACTERS": "3"},
			wantErr: "Characters",
		},
		{
			name:    "descending depths",
			env:     map[string]string{"CPI_TREE_CHARACTERS": "3,5,4"},
			wantErr: "ascending",
		},
		{
			name:    "too many workers",
			env:     map[string]string{"CPI_TREE_WORKERS": "100"},
			wantErr: "Workers",
		},
		{
			name:    "unparsable variable",
			env:     map[string]string{"CPI_TREE_WORKERS": "many"},
			wantErr: "failed to load config from env",
		},
		{
			name:    "unknown file key",
			file:    "tree:\n  depth: 4\n",
			wantErr: "failed to load config from file",
		},
		{
			name:    "bad splice mode in file",
			file:    "splice:\n  mode: quarterly\n",
			wantErr: "Mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				t.Setenv(ConfigFileEnv, writeConfigFile(t, tt.file))
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing.yaml"))
}

func TestValidateDefault(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""
	assert.Error(t, cfg.Validate())
}

func TestPathsResolve(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.LogsDir = filepath.Join(base, "elsewhere")

	paths, err := cfg.Paths.Resolve(base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, "elsewhere"), paths.LogsDir)

	require.NoError(t, paths.EnsureDirectories())
	assert.True(t, FileExists(paths.ReportsDir))
	assert.Equal(t, filepath.Join(base, "reports", "series.csv"), paths.GetReportPath("series.csv"))
	assert.Equal(t, "/abs/base.xlsx", paths.GetDataPath("/abs/base.xlsx"))
	assert.Equal(t, filepath.Join(base, "elsewhere", "run.log"), paths.GetLogPath("run.log"))

	wd, err := cfg.Paths.Resolve("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(wd.DataDir))
}
