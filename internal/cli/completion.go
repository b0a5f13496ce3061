package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for pulsegrid.

To load completions:

Bash:
  $ source <(pulsegrid completion bash)

  # Persist for new sessions:
  $ pulsegrid completion bash > ~/.local/share/bash-completion/completions/pulsegrid

Zsh:
  # Requires compinit. Persist for new sessions:
  $ pulsegrid completion zsh > "${fpath[1]}/_pulsegrid"

Fish:
  $ pulsegrid completion fish | source

  # Persist for new sessions:
  $ pulsegrid completion fish > ~/.config/fish/completions/pulsegrid.fish

PowerShell:
  PS> pulsegrid completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, true)
			case "zsh":
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, true)
			}
			return root.GenPowerShellCompletionWithDesc(stdout)
		},
	}
}
