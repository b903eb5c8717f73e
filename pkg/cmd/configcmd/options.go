// Package configcmd implements the read-only `garden config` command
// group: `show` prints the fully resolved Configuration and `validate`
// runs the Loader/Graft/Expand pipeline and reports diagnostics without
// resolving a query or executing anything (SPEC_FULL.md §5, "garden
// config").
package configcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

// ShowOptions is a struct to support the `config show` command.
type ShowOptions struct {
	base.Options

	// Output defines the output format: 'yaml' or 'json'.
	Output string

	cfg  *model.Configuration
	path string
}

// NewShowOptions returns initialized ShowOptions.
func NewShowOptions(ioStreams util.IOStreams) *ShowOptions {
	return &ShowOptions{Options: base.Options{IOStreams: ioStreams}, Output: "yaml"}
}

// Complete adapts from the command line args to the data required.
func (o *ShowOptions) Complete(f util.Factory, cmd *cobra.Command, args []string) error {
	cfg, path, err := base.LoadConfiguration(f)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.path = path

	return nil
}

// Validate validates the provided options.
func (o *ShowOptions) Validate() error {
	if o.Output != "yaml" && o.Output != "json" {
		return fmt.Errorf("--output must be either 'yaml' or 'json'")
	}

	return nil
}

// ValidateOptions is a struct to support the `config validate` command.
type ValidateOptions struct {
	base.Options

	cfg  *model.Configuration
	path string
	err  error
}

// NewValidateOptions returns initialized ValidateOptions.
func NewValidateOptions(ioStreams util.IOStreams) *ValidateOptions {
	return &ValidateOptions{Options: base.Options{IOStreams: ioStreams}}
}

// Complete adapts from the command line args to the data required. Unlike
// ShowOptions it does not propagate a load failure: validate's whole job is
// to report that failure, not to abort before reporting it.
func (o *ValidateOptions) Complete(f util.Factory, cmd *cobra.Command, args []string) error {
	cfg, path, err := base.LoadConfiguration(f)
	o.cfg = cfg
	o.path = path
	o.err = err

	return nil
}

// Validate validates the provided options; it is a no-op here because the
// interesting validation outcome is o.err, reported by runValidate.
func (o *ValidateOptions) Validate() error {
	return nil
}
