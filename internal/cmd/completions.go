package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/config"
	"github.com/cameronsjo/modulemd/internal/store"
)

// Completion timeout to avoid hanging shell.
const completionTimeout = 2 * time.Second

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for modulemd.

Bash:
  $ source <(modulemd completion bash)

Zsh:
  $ modulemd completion zsh > "${fpath[1]}/_modulemd"
  $ compinit

Fish:
  $ modulemd completion fish | source

PowerShell:
  PS> modulemd completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeYAMLFiles restricts file completion to YAML files.
func completeYAMLFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeBatchIDs completes ids of stored batches.
func completeBatchIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Don't complete if we already have an argument
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()

	s, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer s.Close()

	batches, err := s.Batches(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var ids []string
	for _, b := range batches {
		if strings.HasPrefix(b.ID, toComplete) {
			ids = append(ids, b.ID+"\t"+b.Source)
		}
	}

	return ids, cobra.ShellCompDirectiveNoFileComp
}
