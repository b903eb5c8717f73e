package initcmd_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/util"
	initcmd "github.com/gardencli/garden/pkg/cmd/init"
)

var _ = Describe("Command", func() {
	It("creates a symlink tree without needing a remote", func() {
		dir, err := os.MkdirTemp("", "garden-init-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { Expect(os.RemoveAll(dir)).To(Succeed()) })

		target := filepath.Join(dir, "elsewhere")
		Expect(os.MkdirAll(target, 0o755)).To(Succeed())

		link := filepath.Join(dir, "linked")

		configFile := filepath.Join(dir, "garden.yaml")
		doc := "trees:\n  linked:\n    path: " + link + "\n    symlink: " + target + "\n"
		Expect(os.WriteFile(configFile, []byte(doc), 0o644)).To(Succeed())

		streams, _, _, _ := util.NewTestIOStreams()
		o := initcmd.NewOptions(streams)
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := initcmd.NewCommand(f, o)

		Expect(cmd.RunE(cmd, []string{"linked"})).To(Succeed())

		got, err := os.Readlink(link)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(target))
	})
})
