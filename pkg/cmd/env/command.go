package env

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/internal/executor"
	"github.com/gardencli/garden/internal/query"
	"github.com/gardencli/garden/internal/shellenv"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

// NewCommand returns a new env command.
func NewCommand(f util.Factory, o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env QUERY",
		Short: "Print the composed environment for a single tree as shell export statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f, cmd, args); err != nil {
				return fmt.Errorf("failed to complete command options: %w", err)
			}
			if err := o.Validate(); err != nil {
				return err
			}

			return runCommand(cmd, o)
		},
	}

	cmd.Flags().StringVar(&o.Shell, "shell", o.Shell, fmt.Sprintf("target shell, one of %v", shellenv.ValidShells()))

	return cmd
}

func runCommand(cmd *cobra.Command, o *Options) error {
	trees, err := query.Resolve(o.cfg, o.Query)
	if err != nil {
		return fmt.Errorf("resolving query %q: %w", o.Query, err)
	}

	if len(trees) != 1 {
		return fmt.Errorf("query %q must resolve to exactly one tree, got %d", o.Query, len(trees))
	}

	garden, _ := query.ResolveGarden(o.cfg, o.Query)

	exec := base.NewExecutor(o.cfg, o.IOStreams, executor.Policy{}, garden, o.strict)

	env, err := exec.ComposedEnv(cmd.Context(), trees[0])
	if err != nil {
		return err
	}

	shell := shellenv.Shell(o.Shell)

	for _, kv := range env {
		name, value, _ := strings.Cut(kv, "=")
		fmt.Fprintln(o.IOStreams.Out, shell.ExportStatement(name, value))
	}

	return nil
}
