// Package fetch implements `garden fetch`: it updates every already-cloned,
// non-symlink tree a query resolves to (spec.md §1, "fetching").
package fetch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

// Options is a struct to support the fetch command.
type Options struct {
	base.Options

	Query    string
	Parallel int

	cfg    *model.Configuration
	strict bool
}

// NewOptions returns initialized Options.
func NewOptions(ioStreams util.IOStreams) *Options {
	return &Options{Options: base.Options{IOStreams: ioStreams}, Parallel: 1}
}

// Complete adapts from the command line args to the data required.
func (o *Options) Complete(f util.Factory, cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("fetch takes exactly one query argument")
	}

	o.Query = args[0]
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
	if o.Query == "" {
		return fmt.Errorf("a query is required")
	}

	return nil
}
