/*
SPDX-FileCopyrightText: 2021 SAP SE or an SAP affiliate company and Gardener contributors

SPDX-License-Identifier: Apache-2.0
*/

package root

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/configcmd"
	"github.com/gardencli/garden/pkg/cmd/env"
	"github.com/gardencli/garden/pkg/cmd/fetch"
	initcmd "github.com/gardencli/garden/pkg/cmd/init"
	"github.com/gardencli/garden/pkg/cmd/ls"
	"github.com/gardencli/garden/pkg/cmd/run"
	"github.com/gardencli/garden/pkg/cmd/version"
)

const (
	envPrefix        = "GARDEN"
	envGardenHomeDir = envPrefix + "_HOME"
	envConfigName    = envPrefix + "_CONFIG_NAME"

	configName = "garden"
)

var factory = util.FactoryImpl{}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	ioStreams := util.IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}

	rootCmd := &cobra.Command{
		Use:          "garden",
		Short:        "garden drives config-defined trees of git repositories",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(version.NewCommand(&factory, version.NewOptions(ioStreams)))

	for _, cmd := range []*cobra.Command{
		ls.NewCommand(&factory, ls.NewOptions(ioStreams)),
		run.NewCommand(&factory, run.NewOptions(ioStreams)),
		env.NewCommand(&factory, env.NewOptions(ioStreams)),
		initcmd.NewCommand(&factory, initcmd.NewOptions(ioStreams)),
		fetch.NewCommand(&factory, fetch.NewOptions(ioStreams)),
	} {
		cmd.ValidArgsFunction = queryCompletionFunc
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(configcmd.NewCommand(&factory, ioStreams))
	rootCmd.AddCommand(newCompletionCommand())

	// Do not precalculate what $HOME is for the help text, because it
	// prevents usage where the current user has no home directory (which
	// might _just_ be the reason the user chose to specify an explicit
	// config file).
	rootCmd.PersistentFlags().StringVar(&factory.ConfigFilePath, "config", "", fmt.Sprintf("config file (default: %s, searched per the documented discovery order)", configName+".yaml"))
	rootCmd.PersistentFlags().BoolVar(&factory.StrictMode, "strict", false, "report unresolved variable references as errors instead of expanding them to empty")

	cobra.OnInitialize(initConfig)

	// any error would already be printed, so avoid doing it again here
	if err := rootCmd.Execute(); err != nil {
		if coder, ok := err.(run.ExitCoder); ok {
			os.Exit(coder.ExitCode())
		}

		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set, resolving the
// path that factory.ConfigFile() returns. The actual structural parsing
// happens later, in pkg/config, via the Node Model/Loader/Graft/Expand
// pipeline; viper here is used purely for discovery and flag/env overlay.
func initConfig() {
	if factory.ConfigFilePath != "" {
		// Use config file from the flag.
		viper.SetConfigFile(factory.ConfigFilePath)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		envHomeDir, err := homedir.Expand(os.Getenv(envGardenHomeDir))
		cobra.CheckErr(err)

		if envHomeDir != "" {
			viper.AddConfigPath(envHomeDir)
		}

		viper.AddConfigPath(filepath.Join(home, ".config", "garden"))
		viper.AddConfigPath(".")

		if name := os.Getenv(envConfigName); name != "" {
			viper.SetConfigName(name)
		} else {
			viper.SetConfigName(configName)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	// A missing config file here is not fatal: pkg/config.Find applies its
	// own documented search path as a fallback when factory.ConfigFile()
	// returns empty.
	if err := viper.ReadInConfig(); err == nil {
		factory.ConfigFilePath = viper.ConfigFileUsed()
	}

	home := os.Getenv(envGardenHomeDir)
	if home == "" {
		dir, err := homedir.Dir()
		cobra.CheckErr(err)

		home = dir
	}

	factory.HomeDirectory = home
}
