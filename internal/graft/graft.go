// Package graft implements the Graft Resolver (spec.md §4.2): recursive,
// cycle-guarded loading of referenced sub-configurations, rebased under a
// namespace prefix.
package graft

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardencli/garden/internal/loader"
	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/node"
)

// FileReader abstracts reading a configuration file from disk, so the
// resolver can be exercised with an in-memory filesystem in tests.
type FileReader func(path string) ([]byte, error)

// OSFileReader reads files from the real filesystem.
func OSFileReader(path string) ([]byte, error) { return os.ReadFile(path) } // #nosec G304 -- operator-provided config path

// Aggregated is every entity known to the Configuration once every graft has
// been loaded and namespaced, but before templates/extend are flattened.
type Aggregated struct {
	Root       string
	Shell      string
	ConfigDir  string
	ConfigFile string

	// Templates is keyed by graft namespace prefix ("" for the root
	// document's own trees), then by template name: templates are
	// graft-local and are never exposed under a graft:: qualifier
	// (spec.md §3, "Graft" only lists trees/groups/gardens/variables as
	// namespaced).
	Templates map[string]map[string]*model.Template
	Trees     map[string]*model.Tree
	Groups    map[string]*model.Group
	Gardens   map[string]*model.Garden

	Scoped model.Scoped

	TreeOrder   []string
	GroupOrder  []string
	GardenOrder []string

	Grafts map[string]*model.ResolvedGraft
}

type frontierEntry struct {
	prefix     string // namespace prefix, e.g. "libs::" or "" for the root
	doc        *loader.Document
	configFile string
	configDir  string
	root       string
}

// Resolve loads doc (already parsed from configFile) and every graft it
// references, recursively, breadth-first, and merges the result into one
// Aggregated configuration with namespace-qualified entity names.
func Resolve(doc *loader.Document, configFile string, read FileReader) (*Aggregated, error) {
	absConfigFile, err := filepath.Abs(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration file path: %w", err)
	}

	configDir := filepath.Dir(absConfigFile)

	root := doc.Root
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
	} else {
		root = resolveEarlyPath(root, configDir, "")
		if !filepath.IsAbs(root) {
			root = filepath.Join(configDir, root)
		}
	}

	agg := &Aggregated{
		Root:       root,
		Shell:      doc.Shell,
		ConfigDir:  configDir,
		ConfigFile: absConfigFile,
		Templates:  map[string]map[string]*model.Template{},
		Trees:      map[string]*model.Tree{},
		Groups:     map[string]*model.Group{},
		Gardens:    map[string]*model.Garden{},
		Scoped:     doc.Scoped,
		Grafts:     map[string]*model.ResolvedGraft{},
	}

	visited := map[string]bool{absConfigFile: true}
	queue := []frontierEntry{{prefix: "", doc: doc, configFile: absConfigFile, configDir: configDir, root: root}}

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		mergeEntities(agg, entry)

		// Iterate grafts in declaration order so BFS traversal (and hence
		// namespace registration order) is deterministic.
		for _, name := range entry.doc.GraftOrder {
			g := entry.doc.Grafts[name]

			childPrefix := entry.prefix + name + "::"

			childConfigPath := resolveEarlyPath(g.Config, entry.configDir, entry.root)
			if !filepath.IsAbs(childConfigPath) {
				childConfigPath = filepath.Join(entry.configDir, childConfigPath)
			}

			childConfigPath, err = filepath.Abs(childConfigPath)
			if err != nil {
				return nil, fmt.Errorf("graft %q: %w", childPrefix, err)
			}

			if visited[childConfigPath] {
				return nil, fmt.Errorf("cyclic graft detected: %q already loaded earlier in this chain", childConfigPath)
			}

			visited[childConfigPath] = true

			data, err := read(childConfigPath)
			if err != nil {
				return nil, fmt.Errorf("graft %q: failed to read %q: %w", childPrefix, childConfigPath, err)
			}

			childNode, err := node.Parse(data)
			if err != nil {
				return nil, fmt.Errorf("graft %q: %w", childPrefix, err)
			}

			childDoc, err := loader.Load(childNode)
			if err != nil {
				return nil, fmt.Errorf("graft %q: %w", childPrefix, err)
			}

			childConfigDir := filepath.Dir(childConfigPath)

			var childRoot string

			switch {
			case g.Root != "":
				childRoot = resolveEarlyPath(g.Root, childConfigDir, entry.root)
				if !filepath.IsAbs(childRoot) {
					childRoot = filepath.Join(childConfigDir, childRoot)
				}
			case childDoc.Root != "":
				childRoot = resolveEarlyPath(childDoc.Root, childConfigDir, entry.root)
				if !filepath.IsAbs(childRoot) {
					childRoot = filepath.Join(childConfigDir, childRoot)
				}
			default:
				childRoot = entry.root
			}

			agg.Grafts[childPrefix] = &model.ResolvedGraft{
				NamespacePrefix: childPrefix,
				ConfigFile:      childConfigPath,
				ConfigDir:       childConfigDir,
				Root:            childRoot,
			}

			queue = append(queue, frontierEntry{
				prefix:     childPrefix,
				doc:        childDoc,
				configFile: childConfigPath,
				configDir:  childConfigDir,
				root:       childRoot,
			})
		}
	}

	return agg, nil
}

func mergeEntities(agg *Aggregated, entry frontierEntry) {
	agg.Templates[entry.prefix] = entry.doc.Templates

	for _, name := range entry.doc.TreeOrder {
		t := *entry.doc.Trees[name]
		t.GraftPath = entry.prefix
		t.CanonicalName = entry.prefix + name
		t.SourceFile = entry.configFile
		agg.Trees[t.CanonicalName] = &t
		agg.TreeOrder = append(agg.TreeOrder, t.CanonicalName)
	}

	for _, name := range entry.doc.GroupOrder {
		g := *entry.doc.Groups[name]
		g.GraftPath = entry.prefix
		g.CanonicalName = entry.prefix + name
		agg.Groups[g.CanonicalName] = &g
		agg.GroupOrder = append(agg.GroupOrder, g.CanonicalName)
	}

	for _, name := range entry.doc.GardenOrder {
		g := *entry.doc.Gardens[name]
		g.GraftPath = entry.prefix
		g.CanonicalName = entry.prefix + name
		agg.Gardens[g.CanonicalName] = &g
		agg.GardenOrder = append(agg.GardenOrder, g.CanonicalName)
	}
}

// resolveEarlyPath substitutes the two built-ins that must be known before
// the full Expression Evaluator exists: GARDEN_CONFIG_DIR and GARDEN_ROOT.
// It is not the general `${}` evaluator — it exists only so grafts/roots
// can reference their own location while being rebased (spec.md §4.2).
func resolveEarlyPath(s, configDir, root string) string {
	s = strings.ReplaceAll(s, "${GARDEN_CONFIG_DIR}", configDir)
	s = strings.ReplaceAll(s, "${GARDEN_ROOT}", root)

	return s
}
