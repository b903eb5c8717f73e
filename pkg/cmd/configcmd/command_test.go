package configcmd_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/configcmd"
)

var _ = Describe("Command", func() {
	var dir, configFile string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "garden-config-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { Expect(os.RemoveAll(dir)).To(Succeed()) })

		configFile = filepath.Join(dir, "garden.yaml")
	})

	Describe("show", func() {
		It("prints the resolved configuration as yaml", func() {
			Expect(os.WriteFile(configFile, []byte("trees:\n  a:\n    url: https://example.com/a.git\n"), 0o644)).To(Succeed())

			streams, _, out, _ := util.NewTestIOStreams()
			f := &util.StaticFactory{ConfigFilePath: configFile}
			cmd := configcmd.NewCommand(f, streams)
			cmd.SetArgs([]string{"show"})

			Expect(cmd.Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("a"))
		})
	})

	Describe("validate", func() {
		It("reports ok for a well-formed configuration", func() {
			Expect(os.WriteFile(configFile, []byte("trees:\n  a:\n    url: https://example.com/a.git\n"), 0o644)).To(Succeed())

			streams, _, out, _ := util.NewTestIOStreams()
			f := &util.StaticFactory{ConfigFilePath: configFile}
			cmd := configcmd.NewCommand(f, streams)
			cmd.SetArgs([]string{"validate"})

			Expect(cmd.Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("ok"))
		})

		It("reports a failure for a malformed configuration", func() {
			Expect(os.WriteFile(configFile, []byte("trees: [this is not a map]\n"), 0o644)).To(Succeed())

			streams, _, _, errOut := util.NewTestIOStreams()
			f := &util.StaticFactory{ConfigFilePath: configFile}
			cmd := configcmd.NewCommand(f, streams)
			cmd.SetArgs([]string{"validate"})
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			Expect(cmd.Execute()).To(HaveOccurred())
			Expect(errOut.String()).NotTo(BeEmpty())
		})
	})
})
