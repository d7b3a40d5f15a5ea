package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/modulemd/internal/metrics"
)

func TestValidateCmd(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeFixture(t, "nodejs.yaml", nodejsYAML)
		output, err := executeCmd(t, "validate", path)
		require.NoError(t, err)
		assert.Contains(t, output, "2 documents")
		assert.Contains(t, output, "1 modules")
	})

	t.Run("unknown key rejected unless permissive", func(t *testing.T) {
		path := writeFixture(t, "nodejs.yaml", strings.Replace(nodejsYAML, "  context:", "  bogus: 1\n  context:", 1))

		output, err := executeCmd(t, "validate", path)
		require.Error(t, err)
		assert.Contains(t, output, "bogus")

		_, err = executeCmd(t, "--permissive", "validate", path)
		assert.NoError(t, err)
	})

	t.Run("conflicting defaults across files", func(t *testing.T) {
		a := writeFixture(t, "a.yaml", defaultsFixture("nodejs", "12"))
		b := writeFixture(t, "b.yaml", defaultsFixture("nodejs", "14"))

		output, err := executeCmd(t, "validate", a, b)
		require.Error(t, err)
		assert.Contains(t, output, "conflicting default streams")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := executeCmd(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("requires an argument", func(t *testing.T) {
		_, err := executeCmd(t, "validate")
		assert.Error(t, err)
	})
}

func TestDumpCmd(t *testing.T) {
	a := writeFixture(t, "nodejs.yaml", nodejsYAML)
	b := writeFixture(t, "python.yaml", pythonV1YAML)

	t.Run("stdout", func(t *testing.T) {
		output, err := executeCmd(t, "dump", b, a)
		require.NoError(t, err)
		assert.Less(t, strings.Index(output, "name: nodejs"), strings.Index(output, "name: python"))
		assert.Contains(t, output, "document: modulemd-defaults")
	})

	t.Run("output file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "index.yaml")
		_, err := executeCmd(t, "dump", "-o", out, a)
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "name: nodejs")
	})

	t.Run("failed documents still dump the rest", func(t *testing.T) {
		broken := writeFixture(t, "broken.yaml", "document: modulemd\nversion: 9\ndata: {}\n")
		output, err := executeCmd(t, "dump", a, broken)
		require.Error(t, err)
		assert.Contains(t, output, "name: nodejs")
	})
}

func TestMergeCmd(t *testing.T) {
	low := writeFixture(t, "low.yaml", defaultsFixture("nodejs", "12"))
	high := writeFixture(t, "high.yaml", defaultsFixture("nodejs", "14"))

	t.Run("higher priority wins", func(t *testing.T) {
		output, err := executeCmd(t, "merge", low+":1", high+":2")
		require.NoError(t, err)
		assert.Contains(t, output, `stream: "14"`)
		assert.NotContains(t, output, `stream: "12"`)
	})

	t.Run("same priority conflicts", func(t *testing.T) {
		_, err := executeCmd(t, "merge", low, high)
		assert.Error(t, err)
	})

	t.Run("priority out of range", func(t *testing.T) {
		_, err := executeCmd(t, "merge", low+":1001")
		assert.Error(t, err)
	})
}

func TestSplitPriority(t *testing.T) {
	tests := []struct {
		arg      string
		file     string
		priority int
		wantErr  bool
	}{
		{arg: "repo.yaml", file: "repo.yaml"},
		{arg: "repo.yaml:50", file: "repo.yaml", priority: 50},
		{arg: "c:/repo.yaml", file: "c:/repo.yaml"},
		{arg: "repo.yaml:high", file: "repo.yaml:high"},
		{arg: ":5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			file, priority, err := splitPriority(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.file, file)
			assert.Equal(t, tt.priority, priority)
		})
	}
}

func TestDefaultsCmd(t *testing.T) {
	a := writeFixture(t, "nodejs.yaml", nodejsYAML)
	b := writeFixture(t, "python.yaml", defaultsFixture("python", "3.8"))

	output, err := executeCmd(t, "defaults", a, b)
	require.NoError(t, err)
	assert.Contains(t, output, "nodejs 12 [default]")
	assert.Contains(t, output, "python 3.8")
}

func TestUpgradeCmd(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		path := writeFixture(t, "python.yaml", pythonV1YAML)
		output, err := executeCmd(t, "upgrade", path)
		require.NoError(t, err)
		assert.Contains(t, output, "version: 2")
		assert.Contains(t, output, "rawhide")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, pythonV1YAML, string(data))
	})

	t.Run("write", func(t *testing.T) {
		path := writeFixture(t, "python.yaml", pythonV1YAML)
		output, err := executeCmd(t, "upgrade", "--write", path)
		require.NoError(t, err)
		assert.Contains(t, output, "upgraded 1 streams")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "servicelevels")

		output, err = executeCmd(t, "upgrade", "-w", path)
		require.NoError(t, err)
		assert.Contains(t, output, "already current")
	})
}

func TestStoreCmd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")
	path := writeFixture(t, "nodejs.yaml", nodejsYAML)

	output, err := executeCmd(t, "store", "import", "--store", db, path)
	require.NoError(t, err)
	assert.Contains(t, output, "imported 1 modules")

	output, err = executeCmd(t, "store", "batches", "--store", db)
	require.NoError(t, err)
	assert.Contains(t, output, "2 documents")
	assert.Contains(t, output, path)

	output, err = executeCmd(t, "store", "export", "--store", db)
	require.NoError(t, err)
	assert.Contains(t, output, "name: nodejs")

	t.Setenv("MODULEMD_STORE_PATH", db)
	output, err = executeCmd(t, "store", "export")
	require.NoError(t, err)
	assert.Contains(t, output, "document: modulemd-defaults")

	_, err = executeCmd(t, "store", "delete", "--store", db, "no-such-batch")
	assert.Error(t, err)
}

func TestMetricsMux(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	collector.ObserveDocument("modulemd", nil)

	srv := httptest.NewServer(metricsMux(registry))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWatchCmdRejectsMissingDir(t *testing.T) {
	_, err := executeCmd(t, "watch", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
