package initcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/internal/executor"
	"github.com/gardencli/garden/internal/query"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

// NewCommand returns a new init command.
func NewCommand(f util.Factory, o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init QUERY",
		Short: "Clone or symlink every tree a query resolves to",
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

	cmd.Flags().IntVar(&o.Parallel, "parallel", o.Parallel, "number of trees to materialize concurrently (1 = sequential)")

	return cmd
}

func runCommand(cmd *cobra.Command, o *Options) error {
	trees, err := query.Resolve(o.cfg, o.Query)
	if err != nil {
		return fmt.Errorf("resolving query %q: %w", o.Query, err)
	}

	garden, _ := query.ResolveGarden(o.cfg, o.Query)

	exec := base.NewExecutor(o.cfg, o.IOStreams, executor.Policy{Parallel: o.Parallel}, garden, o.strict)

	results := exec.Init(cmd.Context(), trees)

	failed := 0

	for _, r := range results {
		if r.Err == nil {
			continue
		}

		failed++

		fmt.Fprintf(o.IOStreams.ErrOut, "%s: %v\n", r.Tree.CanonicalName, r.Err)
	}

	if failed > 0 {
		return fmt.Errorf("%d tree(s) failed to initialize", failed)
	}

	return nil
}
