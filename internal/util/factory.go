/*
SPDX-FileCopyrightText: 2021 SAP SE or an SAP affiliate company and Gardener contributors

SPDX-License-Identifier: Apache-2.0
*/

package util

// Factory provides abstractions that allow commands to be extended across
// the different stages of the Loader/Graft/Expand/Query/Executor pipeline
// without every command wiring its own copy of the discovery logic.
type Factory interface {
	// Clock returns a clock that provides access to the current time.
	Clock() Clock
	// HomeDir returns the home directory for the executing user.
	HomeDir() string
	// ConfigFile returns the configuration file path given via --config or
	// found by the root command's discovery (GARDEN_HOME,
	// GARDEN_CONFIG_NAME), or "" to fall back to the documented search path
	// (spec.md §6, "Configuration file").
	ConfigFile() string
	// Strict reports whether unresolved variable references should be
	// surfaced as diagnostics in addition to expanding to empty
	// (spec.md §4.4 step 1).
	Strict() bool
}

// FactoryImpl implements util.Factory interface
type FactoryImpl struct {
	HomeDirectory string

	// ConfigFilePath is the value of the --config persistent flag.
	ConfigFilePath string
	// StrictMode is the value of the --strict persistent flag.
	StrictMode bool
}

func (f *FactoryImpl) HomeDir() string {
	return f.HomeDirectory
}

func (f *FactoryImpl) Clock() Clock {
	return &RealClock{}
}

func (f *FactoryImpl) ConfigFile() string {
	return f.ConfigFilePath
}

func (f *FactoryImpl) Strict() bool {
	return f.StrictMode
}
