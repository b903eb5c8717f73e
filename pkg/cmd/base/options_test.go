/*
SPDX-FileCopyrightText: 2021 SAP SE or an SAP affiliate company and Gardener contributors

SPDX-License-Identifier: Apache-2.0
*/

package base_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/base"
)

var _ = Describe("Base Options", func() {
	It("wires the given IOStreams through", func() {
		streams, _, _, _ := util.NewTestIOStreams()

		options := base.NewOptions(streams)
		Expect(options.IOStreams.Out).To(BeIdenticalTo(streams.Out))
	})
})
