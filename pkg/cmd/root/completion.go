/*
SPDX-FileCopyrightText: 2021 SAP SE or an SAP affiliate company and Gardener contributors

SPDX-License-Identifier: Apache-2.0
*/

package root

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/pkg/cmd/base"
)

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

	Bash:

	  $ source <(garden completion bash)

	  # To load completions for each session, execute once:
	  # Linux:
	  $ garden completion bash > /etc/bash_completion.d/garden
	  # macOS:
	  $ garden completion bash > /usr/local/etc/bash_completion.d/garden

	Zsh:

	  # If shell completion is not already enabled in your environment,
	  # you will need to enable it.  You can execute the following once:

	  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

	  # To load completions for each session, execute once:
	  $ garden completion zsh > "${fpath[1]}/_garden"

	  # You will need to start a new shell for this setup to take effect.

	fish:

	  $ garden completion fish | source

	  # To load completions for each session, execute once:
	  $ garden completion fish > ~/.config/fish/completions/garden.fish

	PowerShell:

	  PS> garden completion powershell | Out-String | Invoke-Expression

	  # To load completions for every new session, run:
	  PS> garden completion powershell > garden.ps1
	  # and source this file from your PowerShell profile.
	`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.ExactValidArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}

			return nil
		},
	}
}

// queryCompletionFunc completes a QUERY argument against the names of
// every tree, group and garden declared in the loaded configuration, plus
// the `@`, `%` and `:` sigils the Query Resolver understands (spec §4.6).
func queryCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, _, err := base.LoadConfiguration(&factory)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	names := make([]string, 0, len(cfg.TreeOrder)+len(cfg.GroupOrder)+len(cfg.GardenOrder))
	names = append(names, cfg.TreeOrder...)

	for _, g := range cfg.GroupOrder {
		names = append(names, "%"+g)
	}

	for _, g := range cfg.GardenOrder {
		names = append(names, ":"+g)
	}

	if toComplete == "" {
		return names, cobra.ShellCompDirectiveNoFileComp
	}

	filtered := make([]string, 0, len(names))

	for _, n := range names {
		if strings.HasPrefix(n, toComplete) {
			filtered = append(filtered, n)
		}
	}

	return filtered, cobra.ShellCompDirectiveNoFileComp
}
