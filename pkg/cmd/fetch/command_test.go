package fetch_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/fetch"
)

var _ = Describe("Command", func() {
	It("skips a symlink tree without error", func() {
		dir, err := os.MkdirTemp("", "garden-fetch-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { Expect(os.RemoveAll(dir)).To(Succeed()) })

		configFile := filepath.Join(dir, "garden.yaml")
		doc := "trees:\n  linked:\n    symlink: /elsewhere\n"
		Expect(os.WriteFile(configFile, []byte(doc), 0o644)).To(Succeed())

		streams, _, _, _ := util.NewTestIOStreams()
		o := fetch.NewOptions(streams)
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := fetch.NewCommand(f, o)

		Expect(cmd.RunE(cmd, []string{"linked"})).To(Succeed())
	})
})
