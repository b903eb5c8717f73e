/*
SPDX-FileCopyrightText: 2021 SAP SE or an SAP affiliate company and Gardener contributors

SPDX-License-Identifier: Apache-2.0
*/

package version_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/util"
	. "github.com/gardencli/garden/pkg/cmd/version"
)

var _ = Describe("Command", func() {
	It("should print version", func() {
		streams, _, out, _ := util.NewTestIOStreams()
		o := NewOptions(streams)
		cmd := NewCommand(&util.FactoryImpl{}, o)

		Expect(cmd.RunE(cmd, nil)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version"))
	})

	It("rejects an invalid output format", func() {
		streams, _, _, _ := util.NewTestIOStreams()
		o := NewOptions(streams)
		o.Output = "xml"
		cmd := NewCommand(&util.FactoryImpl{}, o)

		Expect(cmd.RunE(cmd, nil)).To(MatchError(ContainSubstring("--output must be either")))
	})
})
