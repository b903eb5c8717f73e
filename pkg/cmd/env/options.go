// Package env implements `garden env`: it prints the fully composed
// process environment for a single tree as shell export statements, for
// the caller to `eval` (spec.md §4.5, the Scope Composer's EnvOp
// application).
package env

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/shellenv"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

// Options is a struct to support the env command.
type Options struct {
	base.Options

	Query string
	Shell string

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
		return fmt.Errorf("env takes exactly one query argument")
	}

	o.Query = args[0]
	o.strict = f.Strict()

	cfg, _, err := base.LoadConfiguration(f)
	if err != nil {
		return err
	}

	o.cfg = cfg

	if o.Shell == "" {
		o.Shell = cfg.Shell
	}

	if o.Shell == "" {
		o.Shell = string(shellenv.Default())
	}

	return nil
}

// Validate validates the provided options.
func (o *Options) Validate() error {
	if o.Query == "" {
		return fmt.Errorf("a query is required")
	}

	return shellenv.Shell(o.Shell).Validate()
}
