// Package model holds the typed Configuration produced by the Loader,
// Graft Resolver and Template/Extend Expander. A Configuration is built once
// per process invocation and is immutable thereafter (spec.md §3,
// "Lifecycles").
package model

// EnvMode is the effective directive a single EnvOp applies.
type EnvMode int

const (
	// Prepend is the default mode: no trailing sigil on the key.
	Prepend EnvMode = iota
	// Append is selected by a trailing "+" on the key.
	Append
	// Store is selected by a trailing "=" on the key, and replaces the
	// existing value outright.
	Store
)

func (m EnvMode) String() string {
	switch m {
	case Append:
		return "append"
	case Store:
		return "store"
	default:
		return "prepend"
	}
}

// EnvOp is a single environment directive: set/prepend/append Name to the
// expansion of Value. Name and Value are unevaluated variable expressions;
// Mode is derived at load time from the trailing sigil on the declared key
// (spec.md §3, "EnvOp").
type EnvOp struct {
	Name  string
	Value string
	Mode  EnvMode
}

// Variable is a named, lazily-evaluated template string (spec.md §3).
type Variable struct {
	Name     string
	Template string
}

// Command is an ordered list of shell-command strings, each a variable
// expression, named by its mapping key.
type Command struct {
	Name  string
	Lines []string
}

// Scoped groups the four record-shaped blocks that appear at global, tree
// and garden scope.
type Scoped struct {
	Variables  []Variable
	Env        []EnvOp
	GitConfig  []Variable
	Commands   []Command
	Order      []string // declaration order of variable/env/command names combined, for diagnostics
}

// Remote is a single named Git remote on a Tree.
type Remote struct {
	Name string
	URL  string // unevaluated variable expression
}

// Tree is a Git working directory described in the configuration
// (spec.md §3, "Tree").
type Tree struct {
	Name string

	// Path is an unevaluated variable expression; it defaults to Name
	// relative to garden.root when not declared.
	Path string
	// HasPath records whether Path was explicitly declared, to distinguish
	// "declared empty" from "defaulted".
	HasPath bool

	// Symlink, when non-empty, marks this as a symlink tree: it is skipped
	// by command execution and by exec expressions (spec.md §4.7 step 3).
	Symlink string

	Remotes []Remote
	URL     string // shorthand for an "origin" remote
	HasURL  bool

	Depth        int
	HasDepth     bool
	SingleBranch bool
	HasSingleBr  bool

	Scoped

	// Templates names templates applied left-to-right before the tree's
	// own declarations override (spec.md §4.3).
	Templates []string
	// Extend names a parent tree whose definition is layered in as an
	// additional template applied before Templates (spec.md §4.3).
	Extend string

	// GraftPath is the namespace prefix ("graft_name::...") this tree was
	// registered under, "" for trees declared directly. CanonicalName is
	// GraftPath+Name.
	GraftPath     string
	CanonicalName string

	SourceFile string // absolute path of the configuration file this tree was declared in
}

// Template is shaped like Tree minus identity fields (spec.md §3,
// "Template"). It is never itself targetable.
type Template struct {
	Name string

	Path         string
	HasPath      bool
	Symlink      string
	Depth        int
	HasDepth     bool
	SingleBranch bool
	HasSingleBr  bool
	Remotes      []Remote

	Scoped

	GraftPath     string
	CanonicalName string
}

// Group is a named, ordered list of tree-reference patterns (spec.md §3).
type Group struct {
	Name    string
	Members []string

	GraftPath     string
	CanonicalName string
}

// Garden is a named aggregation of groups, trees and shared scope
// (spec.md §3).
type Garden struct {
	Name   string
	Groups []string
	Trees  []string

	Scoped

	GraftPath     string
	CanonicalName string
}

// Graft is a named reference to an external configuration file, plus an
// optional root override (spec.md §3, "Graft").
type Graft struct {
	Name string
	// Config is the path (relative to the parent's configuration
	// directory, unless absolute) to the child configuration file.
	Config string
	// Root overrides the graft's effective garden.root; empty means
	// "resolve against the parent's root" (spec.md §4.2).
	Root string

	ParentGraftPath string // namespace prefix of the graft declaration itself
}

// Configuration is the fully loaded, graft-resolved, template/extend
// expanded root document (spec.md §3, "Configuration (root)"). It is
// immutable once returned by the loader pipeline; the Query Resolver and
// Scope Composer only ever read from it.
type Configuration struct {
	// Root is garden.root as an absolute path: a declared root has
	// ${GARDEN_CONFIG_DIR} substituted and, when relative, is joined to the
	// configuration directory; an absent root is the process's working
	// directory. Other variable references in it are not expanded.
	Root string
	// Shell is garden.shell; the loader sets "zsh" when it is not declared.
	// No other shell is substituted when zsh is not installed.
	Shell string
	// ConfigDir is the directory containing the top-level configuration
	// file; it is the value of the GARDEN_CONFIG_DIR built-in at global
	// scope.
	ConfigDir string
	// ConfigFile is the absolute path of the top-level configuration file.
	ConfigFile string

	Templates map[string]*Template
	Trees     map[string]*Tree
	Groups    map[string]*Group
	Gardens   map[string]*Garden

	Scoped

	// TreeOrder, GroupOrder and GardenOrder preserve the declaration order
	// entities were registered in (parent document first, then each graft
	// breadth-first), which the Query Resolver's glob matching depends on.
	TreeOrder   []string
	GroupOrder  []string
	GardenOrder []string

	// Grafts records every resolved graft, keyed by its fully-qualified
	// namespace prefix (e.g. "libs::", "libs::inner::"), for diagnostics
	// and for resolving GARDEN_CONFIG_DIR/GARDEN_ROOT per graft.
	Grafts map[string]*ResolvedGraft
}

// ResolvedGraft records the fully-resolved root/config-dir pair for one
// graft, so expression evaluation can look up the right built-ins for any
// tree regardless of how deeply it was grafted in (spec.md §4.2).
type ResolvedGraft struct {
	NamespacePrefix string // e.g. "libs::" or "libs::inner::"
	ConfigFile      string
	ConfigDir       string
	Root            string
}
