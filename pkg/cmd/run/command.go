package run

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/internal/executor"
	"github.com/gardencli/garden/internal/query"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

// ExitCoder is implemented by errors that carry the process exit code the
// caller should surface (spec.md §6, "Exit codes").
type ExitCoder interface {
	ExitCode() int
}

type runError struct {
	failed int
	code   int
}

func (e *runError) Error() string {
	return fmt.Sprintf("%d tree(s) failed", e.failed)
}

func (e *runError) ExitCode() int {
	return e.code
}

// NewCommand returns a new run command.
func NewCommand(f util.Factory, o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run QUERY COMMAND",
		Short: "Run a named command across every tree a query resolves to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f, cmd, args); err != nil {
				return fmt.Errorf("failed to complete command options: %w", err)
			}
			if err := o.Validate(); err != nil {
				return err
			}

			return runCommand(cmd.Context(), o)
		},
	}

	cmd.Flags().BoolVar(&o.KeepGoing, "keep-going", o.KeepGoing, "continue a tree's own command list past a failing line")
	cmd.Flags().BoolVar(&o.ExitOnError, "exit-on-error", o.ExitOnError, "abort scheduling of any tree not yet started once the first tree fails")
	cmd.Flags().IntVar(&o.Parallel, "parallel", o.Parallel, "number of trees to run concurrently (1 = sequential)")

	return cmd
}

func runCommand(ctx context.Context, o *Options) error {
	trees, err := query.Resolve(o.cfg, o.Query)
	if err != nil {
		return fmt.Errorf("resolving query %q: %w", o.Query, err)
	}

	garden, _ := query.ResolveGarden(o.cfg, o.Query)

	exec := base.NewExecutor(o.cfg, o.IOStreams, executor.Policy{
		KeepGoing:   o.KeepGoing,
		ExitOnError: o.ExitOnError,
		Parallel:    o.Parallel,
	}, garden, o.strict)

	results := exec.Run(ctx, trees, o.Command)

	failed := 0
	code := 1

	for _, r := range results {
		if r.Err == nil {
			continue
		}

		if failed == 0 && o.ExitOnError {
			code = exitCodeOf(r.Err)
		}

		failed++

		fmt.Fprintf(o.IOStreams.ErrOut, "%s: %v\n", r.Tree.CanonicalName, r.Err)
	}

	if failed == 0 {
		return nil
	}

	return &runError{failed: failed, code: code}
}

// exitCodeOf unwraps a tree's run error down to the underlying
// *exec.ExitError's code, when --exit-on-error asked for the first
// failure's own exit code (spec.md §6).
func exitCodeOf(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return 1
}
