package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/ui"
)

// defaultsCmd represents the defaults command.
var defaultsCmd = &cobra.Command{
	Use:   "defaults FILE...",
	Short: "Show the default stream and profiles of every module",
	Long: `Merge the given files and list each module that has a default stream,
with the default profiles of that stream.

Example:
  modulemd defaults repo/*.yaml`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeYAMLFiles,
	RunE:              runDefaults,
}

func init() {
	rootCmd.AddCommand(defaultsCmd)
}

func runDefaults(cmd *cobra.Command, args []string) error {
	idx, failed, err := loadFiles(ui.NewPrinter(cmd.ErrOrStderr()), args)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	streams := idx.DefaultStreams()
	for _, name := range idx.ModuleNames() {
		stream, ok := streams[name]
		if !ok {
			continue
		}
		profiles, _ := idx.Module(name).Defaults().ProfilesForStream(stream)
		if len(profiles) == 0 {
			p.Item(name, "%s", stream)
			continue
		}
		p.Item(name, "%s [%s]", stream, strings.Join(profiles, ", "))
	}
	return failedError(failed)
}
