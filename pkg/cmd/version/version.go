/*
SPDX-FileCopyrightText: 2021 SAP SE or an SAP affiliate company and Gardener contributors

SPDX-License-Identifier: Apache-2.0
*/

package version

import "github.com/Masterminds/semver"

// Version is set at build time via -ldflags. It is expected to be a valid
// semantic version, but "dev" (the default for unreleased builds) is not.
var Version = "dev"

// Info is the version information reported by `garden version`.
type Info struct {
	Version string `json:"version" yaml:"version"`
	Major   int64  `json:"major,omitempty" yaml:"major,omitempty"`
	Minor   int64  `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch   int64  `json:"patch,omitempty" yaml:"patch,omitempty"`
}

// Get returns the running binary's version information, parsed with
// Masterminds/semver where Version is a valid semantic version.
func Get() Info {
	info := Info{Version: Version}

	if v, err := semver.NewVersion(Version); err == nil {
		info.Major = v.Major()
		info.Minor = v.Minor()
		info.Patch = v.Patch()
	}

	return info
}
