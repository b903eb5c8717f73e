// Package run implements `garden run`: it resolves a query and executes a
// named command sequence across every matched tree, honoring the
// keep-going / exit-on-error / parallel policy knobs (spec.md §4.7).
package run

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

// Options is a struct to support the run command.
type Options struct {
	base.Options

	Query   string
	Command string

	KeepGoing   bool
	ExitOnError bool
	Parallel    int

	cfg    *model.Configuration
	strict bool
}

// NewOptions returns initialized Options.
func NewOptions(ioStreams util.IOStreams) *Options {
	return &Options{Options: base.Options{IOStreams: ioStreams}, Parallel: 1}
}

// Complete adapts from the command line args to the data required.
func (o *Options) Complete(f util.Factory, cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("run takes exactly two arguments: QUERY COMMAND")
	}

	o.Query = args[0]
	o.Command = args[1]
	o.strict = f.Strict()

	cfg, _, err := base.LoadConfiguration(f)
	if err != nil {
		return err
	}

	o.cfg = cfg

	return nil
}

// Validate validates the provided options.
func (o *Options) Validate() error {
	if o.Query == "" || o.Command == "" {
		return fmt.Errorf("a query and a command name are required")
	}

	if o.Parallel < 0 {
		return fmt.Errorf("--parallel must not be negative")
	}

	return nil
}
