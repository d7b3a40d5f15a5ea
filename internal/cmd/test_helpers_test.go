package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag of c and its subcommands to its default so
// cobra state doesn't leak between tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCmd executes the root command with the given args and returns the output.
// The working directory is a fresh temp dir so no config file is discovered.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// writeFixture writes content to name in a temp dir and returns its path.
func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const nodejsYAML = `---
document: modulemd
version: 2
data:
  name: nodejs
  stream: "12"
  version: 20190101
  context: c0ffee42
  summary: Javascript runtime
  description: Node.js runtime.
  license:
    module: [MIT]
  profiles:
    default:
      rpms: [nodejs, npm]
---
document: modulemd-defaults
version: 1
data:
  module: nodejs
  stream: "12"
  profiles:
    "12": [default]
`

const pythonV1YAML = `---
document: modulemd
version: 1
data:
  name: python
  stream: "3.6"
  version: 1
  summary: Python interpreter
  description: Python 3.6 interpreter.
  eol: 2021-12-23
  license:
    module: [MIT]
  dependencies:
    buildrequires:
      platform: f28
    requires:
      platform: f28
`

func defaultsFixture(module, stream string) string {
	return "document: modulemd-defaults\nversion: 1\ndata:\n  module: " + module +
		"\n  stream: \"" + stream + "\"\n"
}
