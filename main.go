/*
SPDX-FileCopyrightText: 2021 SAP SE or an SAP affiliate company and Gardener contributors

SPDX-License-Identifier: Apache-2.0
*/
package main

import (
	"github.com/gardencli/garden/pkg/cmd/root"
)

func main() {
	root.Execute()
}
