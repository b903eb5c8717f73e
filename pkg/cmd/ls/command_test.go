package ls_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/ls"
)

var _ = Describe("Command", func() {
	var configFile string

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "garden-ls-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { Expect(os.RemoveAll(dir)).To(Succeed()) })

		configFile = filepath.Join(dir, "garden.yaml")
		Expect(os.WriteFile(configFile, []byte(`
trees:
  one:
    path: one
  two:
    path: two
`), 0o644)).To(Succeed())
	})

	It("lists every tree matched by a glob query", func() {
		streams, _, out, _ := util.NewTestIOStreams()
		o := ls.NewOptions(streams)
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := ls.NewCommand(f, o)

		Expect(cmd.RunE(cmd, []string{"*"})).To(Succeed())
		Expect(out.String()).To(ContainSubstring("one"))
		Expect(out.String()).To(ContainSubstring("two"))
	})

	It("prints only paths when --paths-only is set", func() {
		streams, _, out, _ := util.NewTestIOStreams()
		o := ls.NewOptions(streams)
		o.PathsOnly = true
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := ls.NewCommand(f, o)

		Expect(cmd.RunE(cmd, []string{"one"})).To(Succeed())
		Expect(out.String()).NotTo(ContainSubstring("one\t"))
	})

	It("fails for a query that matches nothing", func() {
		streams, _, _, _ := util.NewTestIOStreams()
		o := ls.NewOptions(streams)
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := ls.NewCommand(f, o)

		Expect(cmd.RunE(cmd, []string{"missing"})).To(HaveOccurred())
	})
})
