// Package ls implements `garden ls`: it resolves a query into its ordered
// tree list and prints each tree's canonical name and expanded path
// (spec.md §4.6, the Query Resolver).
package ls

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

// Options is a struct to support the ls command.
type Options struct {
	base.Options

	// Query is the single positional argument: a tree/group/garden name,
	// glob, or graft-qualified pattern (spec.md §6, "Query syntax").
	Query string

	// PathsOnly restricts output to the expanded tree path, one per line.
	PathsOnly bool

	cfg    *model.Configuration
	strict bool
}

// NewOptions returns initialized Options.
func NewOptions(ioStreams util.IOStreams) *Options {
	return &Options{Options: base.Options{IOStreams: ioStreams}}
}

// Complete adapts from the command line args to the data required.
func (o *Options) Complete(f util.Factory, cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("ls takes exactly one query argument")
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
