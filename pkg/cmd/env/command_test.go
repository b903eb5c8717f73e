package env_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/env"
)

var _ = Describe("Command", func() {
	var configFile string

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "garden-env-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { Expect(os.RemoveAll(dir)).To(Succeed()) })

		configFile = filepath.Join(dir, "garden.yaml")
		Expect(os.WriteFile(configFile, []byte(`
garden:
  shell: sh
trees:
  one:
    path: /tmp
    environment:
      FOO: bar
`), 0o644)).To(Succeed())
	})

	It("prints an export statement for every composed environment variable", func() {
		streams, _, out, _ := util.NewTestIOStreams()
		o := env.NewOptions(streams)
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := env.NewCommand(f, o)

		Expect(cmd.RunE(cmd, []string{"one"})).To(Succeed())
		Expect(out.String()).To(ContainSubstring("export FOO='bar'"))
	})

	It("rejects a query matching more than one tree", func() {
		Expect(os.WriteFile(configFile, []byte(`
trees:
  one: {}
  two: {}
`), 0o644)).To(Succeed())

		streams, _, _, _ := util.NewTestIOStreams()
		o := env.NewOptions(streams)
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := env.NewCommand(f, o)

		Expect(cmd.RunE(cmd, []string{"*"})).To(HaveOccurred())
	})
})
