package graft_test

import (
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/graft"
	"github.com/gardencli/garden/internal/loader"
	"github.com/gardencli/garden/internal/node"
)

func TestGraft(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Graft Suite")
}

func fakeReader(files map[string]string) graft.FileReader {
	return func(path string) ([]byte, error) {
		content, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", path)
		}

		return []byte(content), nil
	}
}

func load(doc string) *loader.Document {
	n, err := node.Parse([]byte(doc))
	Expect(err).NotTo(HaveOccurred())

	d, err := loader.Load(n)
	Expect(err).NotTo(HaveOccurred())

	return d
}

var _ = Describe("Resolve", func() {
	It("namespaces a graft's trees, groups and gardens under graft::", func() {
		parent := load(`
trees:
  example/tree: {}
groups:
  all:
    members: [example/tree]
grafts:
  libs: /libs/garden.yaml
`)

		read := fakeReader(map[string]string{
			"/libs/garden.yaml": `
trees:
  core: {}
groups:
  all:
    members: [core]
`,
		})

		agg, err := graft.Resolve(parent, "/parent/garden.yaml", read)
		Expect(err).NotTo(HaveOccurred())

		Expect(agg.Trees).To(HaveKey("example/tree"))
		Expect(agg.Trees).To(HaveKey("libs::core"))
		Expect(agg.Groups).To(HaveKey("libs::all"))
		Expect(agg.Trees["libs::core"].GraftPath).To(Equal("libs::"))
	})

	It("rebases the graft's root against the parent's root unless overridden", func() {
		parent := load(`
garden:
  root: /workspace
grafts:
  libs:
    config: /libs/garden.yaml
    root: /elsewhere
`)

		read := fakeReader(map[string]string{"/libs/garden.yaml": "trees: {}\n"})

		agg, err := graft.Resolve(parent, "/parent/garden.yaml", read)
		Expect(err).NotTo(HaveOccurred())
		Expect(agg.Grafts["libs::"].Root).To(Equal("/elsewhere"))
	})

	It("defaults a graft's root to the parent's root when not overridden", func() {
		parent := load(`
garden:
  root: /workspace
grafts:
  libs: /libs/garden.yaml
`)

		read := fakeReader(map[string]string{"/libs/garden.yaml": "trees: {}\n"})

		agg, err := graft.Resolve(parent, "/parent/garden.yaml", read)
		Expect(err).NotTo(HaveOccurred())
		Expect(agg.Grafts["libs::"].Root).To(Equal("/workspace"))
	})

	It("supports transitive grafts under nested namespaces", func() {
		parent := load("grafts:\n  outer: /outer/garden.yaml\n")
		read := fakeReader(map[string]string{
			"/outer/garden.yaml": "grafts:\n  inner: /inner/garden.yaml\n",
			"/inner/garden.yaml": "trees:\n  core: {}\n",
		})

		agg, err := graft.Resolve(parent, "/parent/garden.yaml", read)
		Expect(err).NotTo(HaveOccurred())
		Expect(agg.Trees).To(HaveKey("outer::inner::core"))
	})

	It("rejects a cycle where a graft chain loads a file already in the chain", func() {
		parent := load("grafts:\n  a: /a.yaml\n")
		read := fakeReader(map[string]string{
			"/a.yaml": "grafts:\n  back: /parent/garden.yaml\n",
		})

		_, err := graft.Resolve(parent, "/parent/garden.yaml", read)
		Expect(err).To(HaveOccurred())
	})
})
