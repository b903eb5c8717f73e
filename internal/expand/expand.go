// Package expand implements the Template/Extend Expander (spec.md §4.3):
// it resolves a Tree's `templates:` and `extend:` into a single
// fully-materialized definition, with deep layering for mapping-shaped
// blocks and replacement for identity scalars.
package expand

import (
	"fmt"

	"github.com/gardencli/garden/internal/graft"
	"github.com/gardencli/garden/internal/model"
)

// Expand flattens every tree in agg against its templates/extend chain and
// returns the resulting immutable Configuration.
func Expand(agg *graft.Aggregated) (*model.Configuration, error) {
	cfg := &model.Configuration{
		Root:        agg.Root,
		Shell:       agg.Shell,
		ConfigDir:   agg.ConfigDir,
		ConfigFile:  agg.ConfigFile,
		Templates:   map[string]*model.Template{},
		Trees:       map[string]*model.Tree{},
		Groups:      agg.Groups,
		Gardens:     agg.Gardens,
		Scoped:      agg.Scoped,
		TreeOrder:   append([]string(nil), agg.TreeOrder...),
		GroupOrder:  append([]string(nil), agg.GroupOrder...),
		GardenOrder: append([]string(nil), agg.GardenOrder...),
		Grafts:      agg.Grafts,
	}

	for prefix, templates := range agg.Templates {
		for name, t := range templates {
			cfg.Templates[prefix+name] = t
		}
	}

	for _, canonicalName := range agg.TreeOrder {
		t := agg.Trees[canonicalName]

		flattened, err := flattenTree(agg, t, map[string]bool{})
		if err != nil {
			return nil, err
		}

		cfg.Trees[canonicalName] = flattened
	}

	return cfg, nil
}

// flattenTree resolves t's extend chain (followed by its own templates:
// list) into one materialized tree. visited guards against extend cycles,
// keyed by canonical tree name.
func flattenTree(agg *graft.Aggregated, t *model.Tree, visited map[string]bool) (*model.Tree, error) {
	if visited[t.CanonicalName] {
		return nil, fmt.Errorf("cyclic extend detected at tree %q", t.CanonicalName)
	}

	visited[t.CanonicalName] = true

	layers := make([]*model.Tree, 0, len(t.Templates)+1)

	// extend's parent is an additional template applied before the
	// declared templates list (spec.md §4.3). Only the first remote is
	// inherited from it.
	if t.Extend != "" {
		parent, ok := agg.Trees[t.GraftPath+t.Extend]
		if !ok {
			return nil, fmt.Errorf("tree %q extends unknown tree %q", t.CanonicalName, t.Extend)
		}

		flattenedParent, err := flattenTree(agg, parent, visited)
		if err != nil {
			return nil, err
		}

		asTemplate := treeAsTemplate(flattenedParent)
		if len(asTemplate.Remotes) > 1 {
			asTemplate.Remotes = asTemplate.Remotes[:1]
		}

		layers = append(layers, templateAsTree(asTemplate))
	}

	for _, templateName := range t.Templates {
		tmpl, ok := agg.Templates[t.GraftPath][templateName]
		if !ok {
			return nil, fmt.Errorf("tree %q references unknown template %q", t.CanonicalName, templateName)
		}

		layers = append(layers, templateAsTree(tmpl))
	}

	result := emptyTree(t)

	for _, layer := range layers {
		result = layerTree(result, layer)
	}

	result = layerTree(result, t)

	return result, nil
}

func emptyTree(identity *model.Tree) *model.Tree {
	return &model.Tree{
		Name:          identity.Name,
		CanonicalName: identity.CanonicalName,
		GraftPath:     identity.GraftPath,
		SourceFile:    identity.SourceFile,
	}
}

func treeAsTemplate(t *model.Tree) *model.Template {
	return &model.Template{
		Path: t.Path, HasPath: t.HasPath,
		Symlink:      t.Symlink,
		Depth:        t.Depth,
		HasDepth:     t.HasDepth,
		SingleBranch: t.SingleBranch,
		HasSingleBr:  t.HasSingleBr,
		Remotes:      t.Remotes,
		Scoped:       t.Scoped,
	}
}

func templateAsTree(tmpl *model.Template) *model.Tree {
	return &model.Tree{
		Path: tmpl.Path, HasPath: tmpl.HasPath,
		Symlink:      tmpl.Symlink,
		Depth:        tmpl.Depth,
		HasDepth:     tmpl.HasDepth,
		SingleBranch: tmpl.SingleBranch,
		HasSingleBr:  tmpl.HasSingleBr,
		Remotes:      tmpl.Remotes,
		Scoped:       tmpl.Scoped,
	}
}

// layerTree applies overlay onto base: identity scalars (path, url, depth,
// single-branch) replace when declared; mapping-shaped blocks (variables,
// gitconfig, commands) deep-merge by name, an overlay entry replacing the
// base entry of the same name in place and new names being appended, while
// environment operations are appended after base's in order (spec.md §4.3,
// §4.5).
func layerTree(base, overlay *model.Tree) *model.Tree {
	out := *base

	if overlay.HasPath {
		out.Path, out.HasPath = overlay.Path, true
	}

	if overlay.Symlink != "" {
		out.Symlink = overlay.Symlink
	}

	if overlay.HasURL {
		out.URL, out.HasURL = overlay.URL, true
	}

	if len(overlay.Remotes) > 0 {
		out.Remotes = mergeRemotes(base.Remotes, overlay.Remotes)
	}

	if overlay.HasDepth {
		out.Depth, out.HasDepth = overlay.Depth, true
	}

	if overlay.HasSingleBr {
		out.SingleBranch, out.HasSingleBr = overlay.SingleBranch, true
	}

	out.Scoped = mergeScoped(base.Scoped, overlay.Scoped)

	if len(overlay.Templates) > 0 {
		out.Templates = overlay.Templates
	}

	if overlay.Extend != "" {
		out.Extend = overlay.Extend
	}

	return &out
}

func mergeRemotes(base, overlay []model.Remote) []model.Remote {
	byName := map[string]int{}

	out := append([]model.Remote(nil), base...)
	for i, r := range out {
		byName[r.Name] = i
	}

	for _, r := range overlay {
		if i, ok := byName[r.Name]; ok {
			out[i] = r
		} else {
			byName[r.Name] = len(out)
			out = append(out, r)
		}
	}

	return out
}

func mergeScoped(base, overlay model.Scoped) model.Scoped {
	return model.Scoped{
		Variables: mergeVariables(base.Variables, overlay.Variables),
		Env:       append(append([]model.EnvOp(nil), base.Env...), overlay.Env...),
		GitConfig: mergeVariables(base.GitConfig, overlay.GitConfig),
		Commands:  mergeCommands(base.Commands, overlay.Commands),
	}
}

func mergeVariables(base, overlay []model.Variable) []model.Variable {
	byName := map[string]int{}

	out := append([]model.Variable(nil), base...)
	for i, v := range out {
		byName[v.Name] = i
	}

	for _, v := range overlay {
		if i, ok := byName[v.Name]; ok {
			out[i] = v
		} else {
			byName[v.Name] = len(out)
			out = append(out, v)
		}
	}

	return out
}

func mergeCommands(base, overlay []model.Command) []model.Command {
	byName := map[string]int{}

	out := append([]model.Command(nil), base...)
	for i, c := range out {
		byName[c.Name] = i
	}

	for _, c := range overlay {
		if i, ok := byName[c.Name]; ok {
			out[i] = c
		} else {
			byName[c.Name] = len(out)
			out = append(out, c)
		}
	}

	return out
}
