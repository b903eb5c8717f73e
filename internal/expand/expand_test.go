package expand_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/expand"
	"github.com/gardencli/garden/internal/graft"
	"github.com/gardencli/garden/internal/loader"
	"github.com/gardencli/garden/internal/node"
)

func TestExpand(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expand Suite")
}

func resolve(doc string) *graft.Aggregated {
	n, err := node.Parse([]byte(doc))
	Expect(err).NotTo(HaveOccurred())

	d, err := loader.Load(n)
	Expect(err).NotTo(HaveOccurred())

	agg, err := graft.Resolve(d, "/parent/garden.yaml", graft.OSFileReader)
	Expect(err).NotTo(HaveOccurred())

	return agg
}

var _ = Describe("Expand", func() {
	It("applies a named template's fields onto a tree that declares none of its own", func() {
		agg := resolve(`
templates:
  go:
    path: ${GARDEN_ROOT}/go/${TREE_NAME}
    remotes:
      origin: https://example.com/${TREE_NAME}.git
trees:
  example/tool:
    templates: [go]
`)
		cfg, err := expand.Expand(agg)
		Expect(err).NotTo(HaveOccurred())

		tr := cfg.Trees["example/tool"]
		Expect(tr.Path).To(Equal("${GARDEN_ROOT}/go/${TREE_NAME}"))
		Expect(tr.Remotes).To(HaveLen(1))
		Expect(tr.Remotes[0].Name).To(Equal("origin"))
	})

	It("lets a tree's own declared path override its template's path", func() {
		agg := resolve(`
templates:
  go:
    path: ${GARDEN_ROOT}/go/${TREE_NAME}
trees:
  example/tool:
    path: /custom/path
    templates: [go]
`)
		cfg, err := expand.Expand(agg)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Trees["example/tool"].Path).To(Equal("/custom/path"))
	})

	It("deep-merges variables from multiple templates instead of replacing", func() {
		agg := resolve(`
templates:
  base:
    variables:
      LANG: go
  extra:
    variables:
      REGISTRY: example.com
trees:
  example/tool:
    templates: [base, extra]
    variables:
      OWNER: me
`)
		cfg, err := expand.Expand(agg)
		Expect(err).NotTo(HaveOccurred())

		names := []string{}
		for _, v := range cfg.Trees["example/tool"].Variables {
			names = append(names, v.Name)
		}

		Expect(names).To(ConsistOf("LANG", "REGISTRY", "OWNER"))
	})

	It("layers extend's parent in as an additional template before declared templates", func() {
		agg := resolve(`
trees:
  example/base:
    path: /base/path
    variables:
      LANG: go
  example/child:
    extend: example/base
    variables:
      OWNER: me
`)
		cfg, err := expand.Expand(agg)
		Expect(err).NotTo(HaveOccurred())

		child := cfg.Trees["example/child"]
		Expect(child.Path).To(Equal("/base/path"))

		names := []string{}
		for _, v := range child.Variables {
			names = append(names, v.Name)
		}

		Expect(names).To(ConsistOf("LANG", "OWNER"))
	})

	It("inherits only the first remote from an extended parent", func() {
		agg := resolve(`
trees:
  example/base:
    remotes:
      origin: https://example.com/base.git
      upstream: https://example.com/upstream.git
  example/child:
    extend: example/base
`)
		cfg, err := expand.Expand(agg)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Trees["example/child"].Remotes).To(HaveLen(1))
		Expect(cfg.Trees["example/child"].Remotes[0].Name).To(Equal("origin"))
	})

	It("rejects an extend cycle", func() {
		agg := resolve(`
trees:
  a:
    extend: b
  b:
    extend: a
`)
		_, err := expand.Expand(agg)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a reference to an unknown template", func() {
		agg := resolve("trees:\n  example/tool:\n    templates: [missing]\n")
		_, err := expand.Expand(agg)
		Expect(err).To(HaveOccurred())
	})

	It("resolves templates from the graft-local namespace a tree was declared in", func() {
		agg := resolve(`
templates:
  go:
    path: /root-template
trees:
  example/tool:
    templates: [go]
`)
		cfg, err := expand.Expand(agg)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Templates).To(HaveKey("go"))
		Expect(cfg.Trees["example/tool"].Path).To(Equal("/root-template"))
	})
})
