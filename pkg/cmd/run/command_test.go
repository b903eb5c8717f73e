package run_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/cmd/run"
)

var _ = Describe("Command", func() {
	var configFile string

	writeConfig := func(doc string) {
		dir, err := os.MkdirTemp("", "garden-run-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { Expect(os.RemoveAll(dir)).To(Succeed()) })

		configFile = filepath.Join(dir, "garden.yaml")
		Expect(os.WriteFile(configFile, []byte(doc), 0o644)).To(Succeed())
	}

	It("runs a command across every resolved tree", func() {
		writeConfig(`
garden:
  shell: sh
trees:
  one:
    path: /tmp
    commands:
      greet: echo hello
`)
		streams, _, out, _ := util.NewTestIOStreams()
		o := run.NewOptions(streams)
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := run.NewCommand(f, o)

		Expect(cmd.RunE(cmd, []string{"one", "greet"})).To(Succeed())
		Expect(out.String()).To(ContainSubstring("hello"))
	})

	It("reports a failing tree and a non-zero exit code", func() {
		writeConfig(`
garden:
  shell: sh
trees:
  one:
    path: /tmp
    commands:
      fail: "false"
`)
		streams, _, _, errOut := util.NewTestIOStreams()
		o := run.NewOptions(streams)
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := run.NewCommand(f, o)

		err := cmd.RunE(cmd, []string{"one", "fail"})
		Expect(err).To(HaveOccurred())

		coder, ok := err.(run.ExitCoder)
		Expect(ok).To(BeTrue())
		Expect(coder.ExitCode()).To(Equal(1))
		Expect(errOut.String()).To(ContainSubstring("one"))
	})

	It("reports exit code 1 for a failing tree even when its command exits with a different code, without --exit-on-error", func() {
		writeConfig(`
garden:
  shell: sh
trees:
  one:
    path: /tmp
    commands:
      fail: "exit 7"
`)
		streams, _, _, _ := util.NewTestIOStreams()
		o := run.NewOptions(streams)
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := run.NewCommand(f, o)

		err := cmd.RunE(cmd, []string{"one", "fail"})
		Expect(err).To(HaveOccurred())

		coder, ok := err.(run.ExitCoder)
		Expect(ok).To(BeTrue())
		Expect(coder.ExitCode()).To(Equal(1))
	})

	It("adopts the first failing tree's own exit code only under --exit-on-error", func() {
		writeConfig(`
garden:
  shell: sh
trees:
  one:
    path: /tmp
    commands:
      fail: "exit 7"
`)
		streams, _, _, _ := util.NewTestIOStreams()
		o := run.NewOptions(streams)
		o.ExitOnError = true
		f := &util.StaticFactory{ConfigFilePath: configFile}
		cmd := run.NewCommand(f, o)

		err := cmd.RunE(cmd, []string{"one", "fail"})
		Expect(err).To(HaveOccurred())

		coder, ok := err.(run.ExitCoder)
		Expect(ok).To(BeTrue())
		Expect(coder.ExitCode()).To(Equal(7))
	})
})
