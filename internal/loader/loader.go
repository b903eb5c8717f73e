// Package loader turns a raw node.Node document into typed, but not yet
// graft-resolved or template-expanded, records (spec.md §4.1). It owns the
// shape coercions: string-to-list promotion, scalar-or-mapping duality for
// grafts, and environment key sigil parsing.
package loader

import (
	"fmt"
	"strings"

	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/node"
)

// Diagnostic is a non-fatal loader finding: an unknown key inside a typed
// record. Unknown top-level keys are errors (spec.md §4.1); unknown keys
// inside typed records are warnings collected here.
type Diagnostic struct {
	Path    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Path, d.Message)
}

// Document is one configuration file's typed, unexpanded content: grafts
// are still raw references, templates/extend are still unflattened, and no
// namespace prefix has been applied.
type Document struct {
	Root  string
	Shell string

	Templates map[string]*model.Template
	Trees     map[string]*model.Tree
	Groups    map[string]*model.Group
	Gardens   map[string]*model.Garden
	Grafts    map[string]*model.Graft

	Scoped model.Scoped

	TemplateOrder []string
	TreeOrder     []string
	GroupOrder    []string
	GardenOrder   []string
	GraftOrder    []string

	Diagnostics []Diagnostic
}

var topLevelKeys = map[string]bool{
	"garden": true, "variables": true, "environment": true, "commands": true,
	"templates": true, "trees": true, "groups": true, "gardens": true, "grafts": true,
}

// Load decodes a single configuration document's Node tree into a Document.
func Load(n *node.Node) (*Document, error) {
	if n == nil {
		n = &node.Node{Kind: node.Mapping}
	}

	if unknown := n.UnknownFields(topLevelKeys); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown top-level key(s): %s", strings.Join(unknown, ", "))
	}

	for _, key := range n.Keys {
		if v := n.Fields[key]; v.Kind != node.Mapping && v.Kind != node.Null {
			return nil, fmt.Errorf("top-level key %q must be a mapping", key)
		}
	}

	doc := &Document{
		Templates: map[string]*model.Template{},
		Trees:     map[string]*model.Tree{},
		Groups:    map[string]*model.Group{},
		Gardens:   map[string]*model.Garden{},
		Grafts:    map[string]*model.Graft{},
	}

	if garden, ok := n.Field("garden"); ok {
		root, shell, diags := loadGardenBlock(garden)
		doc.Root = root
		doc.Shell = shell
		doc.Diagnostics = append(doc.Diagnostics, diags...)
	}

	if doc.Shell == "" {
		doc.Shell = "zsh"
	}

	scoped, diags := loadScoped(n, "$")
	doc.Scoped = scoped
	doc.Diagnostics = append(doc.Diagnostics, diags...)

	if templates, ok := n.Field("templates"); ok {
		for _, name := range templates.Keys {
			tpl, diags := loadTemplate(name, templates.Fields[name])
			doc.Templates[name] = tpl
			doc.TemplateOrder = append(doc.TemplateOrder, name)
			doc.Diagnostics = append(doc.Diagnostics, diags...)
		}
	}

	if trees, ok := n.Field("trees"); ok {
		for _, name := range trees.Keys {
			tree, diags := loadTree(name, trees.Fields[name])
			doc.Trees[name] = tree
			doc.TreeOrder = append(doc.TreeOrder, name)
			doc.Diagnostics = append(doc.Diagnostics, diags...)
		}
	}

	if groups, ok := n.Field("groups"); ok {
		for _, name := range groups.Keys {
			doc.Groups[name] = &model.Group{Name: name, Members: groups.Fields[name].AsStringList()}
			doc.GroupOrder = append(doc.GroupOrder, name)
		}
	}

	if gardens, ok := n.Field("gardens"); ok {
		for _, name := range gardens.Keys {
			garden, diags := loadGarden(name, gardens.Fields[name])
			doc.Gardens[name] = garden
			doc.GardenOrder = append(doc.GardenOrder, name)
			doc.Diagnostics = append(doc.Diagnostics, diags...)
		}
	}

	if grafts, ok := n.Field("grafts"); ok {
		for _, name := range grafts.Keys {
			doc.Grafts[name] = loadGraft(name, grafts.Fields[name])
			doc.GraftOrder = append(doc.GraftOrder, name)
		}
	}

	return doc, nil
}

func loadGardenBlock(n *node.Node) (root, shell string, diags []Diagnostic) {
	known := map[string]bool{"root": true, "shell": true}
	for _, unk := range n.UnknownFields(known) {
		diags = append(diags, Diagnostic{Path: "garden", Message: "unknown key " + unk})
	}

	if v, ok := n.Field("root"); ok {
		root = v.String()
	}

	if v, ok := n.Field("shell"); ok {
		shell = v.String()
	}

	return root, shell, diags
}

// loadScoped reads the variables/environment/gitconfig/commands blocks
// common to the root document, a Tree, a Template and a Garden.
func loadScoped(n *node.Node, path string) (model.Scoped, []Diagnostic) {
	var s model.Scoped

	var diags []Diagnostic

	if vars, ok := n.Field("variables"); ok {
		for _, name := range vars.Keys {
			s.Variables = append(s.Variables, model.Variable{Name: name, Template: vars.Fields[name].String()})
			s.Order = append(s.Order, "variables."+name)
		}
	}

	if env, ok := n.Field("environment"); ok {
		for _, key := range env.Keys {
			name, mode := parseEnvSigil(key)
			s.Env = append(s.Env, model.EnvOp{Name: name, Value: env.Fields[key].String(), Mode: mode})
			s.Order = append(s.Order, "environment."+key)
		}
	}

	if gc, ok := n.Field("gitconfig"); ok {
		for _, key := range gc.Keys {
			s.GitConfig = append(s.GitConfig, model.Variable{Name: key, Template: gc.Fields[key].String()})
		}
	}

	if cmds, ok := n.Field("commands"); ok {
		for _, name := range cmds.Keys {
			s.Commands = append(s.Commands, model.Command{Name: name, Lines: cmds.Fields[name].AsStringList()})
			s.Order = append(s.Order, "commands."+name)
		}
	}

	_ = path
	_ = diags

	return s, diags
}

// parseEnvSigil strips a trailing "+" (append) or "=" (store) from an
// environment key and returns the bare name and derived mode. No sigil
// means prepend (spec.md §3, "EnvOp").
func parseEnvSigil(key string) (name string, mode model.EnvMode) {
	if strings.HasSuffix(key, "+") {
		return strings.TrimSuffix(key, "+"), model.Append
	}

	if strings.HasSuffix(key, "=") {
		return strings.TrimSuffix(key, "="), model.Store
	}

	return key, model.Prepend
}

func loadRemotes(n *node.Node) []model.Remote {
	remotes, ok := n.Field("remotes")
	if !ok {
		return nil
	}

	out := make([]model.Remote, 0, len(remotes.Keys))
	for _, name := range remotes.Keys {
		out = append(out, model.Remote{Name: name, URL: remotes.Fields[name].String()})
	}

	return out
}

var treeKnownKeys = map[string]bool{
	"path": true, "symlink": true, "remotes": true, "url": true, "depth": true,
	"single-branch": true, "variables": true, "environment": true, "gitconfig": true,
	"commands": true, "templates": true, "extend": true,
}

func loadTree(name string, n *node.Node) (*model.Tree, []Diagnostic) {
	t := &model.Tree{Name: name, CanonicalName: name}

	var diags []Diagnostic

	for _, unk := range n.UnknownFields(treeKnownKeys) {
		diags = append(diags, Diagnostic{Path: "trees." + name, Message: "unknown key " + unk})
	}

	if v, ok := n.Field("path"); ok {
		t.Path, t.HasPath = v.String(), true
	}

	if v, ok := n.Field("symlink"); ok {
		t.Symlink = v.String()
	}

	t.Remotes = loadRemotes(n)

	if v, ok := n.Field("url"); ok {
		t.URL, t.HasURL = v.String(), true
	}

	if v, ok := n.Field("depth"); ok {
		t.Depth, t.HasDepth = parseInt(v.String()), true
	}

	if v, ok := n.Field("single-branch"); ok {
		t.SingleBranch, t.HasSingleBr = parseBool(v.String()), true
	}

	scoped, sdiags := loadScoped(n, "trees."+name)
	t.Scoped = scoped
	diags = append(diags, sdiags...)

	if v, ok := n.Field("templates"); ok {
		t.Templates = v.AsStringList()
	}

	if v, ok := n.Field("extend"); ok {
		t.Extend = v.String()
	}

	return t, diags
}

func loadTemplate(name string, n *node.Node) (*model.Template, []Diagnostic) {
	tmpl := &model.Template{Name: name, CanonicalName: name}

	var diags []Diagnostic

	if v, ok := n.Field("path"); ok {
		tmpl.Path, tmpl.HasPath = v.String(), true
	}

	if v, ok := n.Field("symlink"); ok {
		tmpl.Symlink = v.String()
	}

	tmpl.Remotes = loadRemotes(n)

	if v, ok := n.Field("depth"); ok {
		tmpl.Depth, tmpl.HasDepth = parseInt(v.String()), true
	}

	if v, ok := n.Field("single-branch"); ok {
		tmpl.SingleBranch, tmpl.HasSingleBr = parseBool(v.String()), true
	}

	scoped, sdiags := loadScoped(n, "templates."+name)
	tmpl.Scoped = scoped
	diags = append(diags, sdiags...)

	return tmpl, diags
}

func loadGarden(name string, n *node.Node) (*model.Garden, []Diagnostic) {
	g := &model.Garden{Name: name, CanonicalName: name}

	if v, ok := n.Field("groups"); ok {
		g.Groups = v.AsStringList()
	}

	if v, ok := n.Field("trees"); ok {
		g.Trees = v.AsStringList()
	}

	scoped, diags := loadScoped(n, "gardens."+name)
	g.Scoped = scoped

	return g, diags
}

// loadGraft resolves the scalar-or-mapping duality: a bare string is a path
// to the sub-config with no root override (spec.md §4.1).
func loadGraft(name string, n *node.Node) *model.Graft {
	if n.IsScalar() {
		return &model.Graft{Name: name, Config: n.String()}
	}

	g := &model.Graft{Name: name}
	if v, ok := n.Field("config"); ok {
		g.Config = v.String()
	}

	if v, ok := n.Field("root"); ok {
		g.Root = v.String()
	}

	return g
}

func parseInt(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}

		n = n*10 + int(r-'0')
	}

	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}
