package ls

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/internal/executor"
	"github.com/gardencli/garden/internal/query"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

// NewCommand returns a new ls command.
func NewCommand(f util.Factory, o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls QUERY",
		Short: "List the trees a query resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f, cmd, args); err != nil {
				return fmt.Errorf("failed to complete command options: %w", err)
			}
			if err := o.Validate(); err != nil {
				return err
			}

			return runCommand(cmd.Context(), f, o)
		},
	}

	cmd.Flags().BoolVar(&o.PathsOnly, "paths-only", o.PathsOnly, "print only the expanded tree path, one per line")

	return cmd
}

func runCommand(ctx context.Context, f util.Factory, o *Options) error {
	trees, err := query.Resolve(o.cfg, o.Query)
	if err != nil {
		return fmt.Errorf("resolving query %q: %w", o.Query, err)
	}

	garden, _ := query.ResolveGarden(o.cfg, o.Query)

	exec := base.NewExecutor(o.cfg, o.IOStreams, executor.Policy{}, garden, o.strict)

	for _, t := range trees {
		path, err := exec.TreePath(ctx, t)
		if err != nil {
			return fmt.Errorf("resolving path for tree %q: %w", t.CanonicalName, err)
		}

		if o.PathsOnly {
			fmt.Fprintln(o.IOStreams.Out, path)
			continue
		}

		fmt.Fprintf(o.IOStreams.Out, "%s\t%s\n", t.CanonicalName, path)
	}

	return nil
}
