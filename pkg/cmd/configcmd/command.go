package configcmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gardencli/garden/internal/util"
)

// NewCommand returns the `config` command group.
func NewCommand(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the loaded garden configuration",
	}

	cmd.AddCommand(newShowCommand(f, ioStreams))
	cmd.AddCommand(newValidateCommand(f, ioStreams))

	return cmd
}

func newShowCommand(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	o := NewShowOptions(ioStreams)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the fully resolved configuration (after grafts and templates expand)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f, cmd, args); err != nil {
				return fmt.Errorf("failed to complete command options: %w", err)
			}
			if err := o.Validate(); err != nil {
				return err
			}

			return runShow(o)
		},
	}

	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, "One of 'yaml' or 'json'.")

	return cmd
}

func runShow(o *ShowOptions) error {
	switch o.Output {
	case "json":
		marshalled, err := json.MarshalIndent(o.cfg, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(o.IOStreams.Out, string(marshalled))
	default:
		marshalled, err := yaml.Marshal(o.cfg)
		if err != nil {
			return err
		}

		fmt.Fprintln(o.IOStreams.Out, string(marshalled))
	}

	return nil
}

func newValidateCommand(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	o := NewValidateOptions(ioStreams)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the loader/graft/template pipeline and report diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f, cmd, args); err != nil {
				return fmt.Errorf("failed to complete command options: %w", err)
			}
			if err := o.Validate(); err != nil {
				return err
			}

			return runValidate(o)
		},
	}

	return cmd
}

func runValidate(o *ValidateOptions) error {
	if o.err != nil {
		fmt.Fprintf(o.IOStreams.ErrOut, "%s: %v\n", o.path, o.err)
		return fmt.Errorf("configuration is invalid")
	}

	fmt.Fprintf(o.IOStreams.Out, "%s: ok (%d tree(s), %d group(s), %d garden(s))\n",
		o.path, len(o.cfg.TreeOrder), len(o.cfg.GroupOrder), len(o.cfg.GardenOrder))

	return nil
}
