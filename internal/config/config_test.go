package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalSymlinks resolves symlinks for path comparison (macOS /var -> /private/var).
func evalSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFindRoot(t *testing.T) {
	tmpDir := evalSymlinks(t, t.TempDir())
	writeConfig(t, tmpDir, "strict: false\n")

	subDir := filepath.Join(tmpDir, "sub", "deep")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	root, err := FindRoot(subDir)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindRoot_IgnoresDirectoryNamedLikeFile(t *testing.T) {
	tmpDir := evalSymlinks(t, t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, FileName), 0755))

	_, err := FindRoot(tmpDir)
	if err == nil {
		t.Skip("a config file exists above the temp directory")
	}
	assert.ErrorIs(t, err, ErrNoConfigFile)
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := evalSymlinks(t, t.TempDir())
	t.Chdir(tmpDir)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	if cfg.File != "" {
		t.Skip("a config file exists above the temp directory")
	}
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
strict: false
log:
  level: debug
  format: json
store:
  path: /var/lib/modulemd/catalog.db
watch:
  debounce: 2s
  metrics_addr: ":9100"
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.False(t, cfg.Strict)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/var/lib/modulemd/catalog.db", cfg.Store.Path)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, ":9100", cfg.Watch.MetricsAddr)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_Discovered(t *testing.T) {
	tmpDir := evalSymlinks(t, t.TempDir())
	writeConfig(t, tmpDir, "log:\n  level: warn\n")
	subDir := filepath.Join(tmpDir, "repo")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	t.Chdir(subDir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, filepath.Join(tmpDir, FileName), cfg.File)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "log:\n  level: warn\n")
	t.Setenv("MODULEMD_LOG_LEVEL", "error")
	t.Setenv("MODULEMD_STORE_PATH", "/tmp/env.db")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/tmp/env.db", cfg.Store.Path)
}

func TestLoad_Flags(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "log:\n  level: warn\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	flags.String("log-format", "", "")
	flags.Bool("permissive", false, "")
	require.NoError(t, flags.Parse([]string{"--log-level=debug", "--permissive"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Strict)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "log: [unclosed\n")
	_, err := Load(path, nil)
	assert.Error(t, err)
}
