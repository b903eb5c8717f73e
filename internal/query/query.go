// Package query implements the Query Resolver (spec.md §4.6): it expands a
// single query string into an ordered, deduplicated list of trees.
package query

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gardencli/garden/internal/model"
)

// Resolve expands query against cfg into the ordered tree list it denotes.
func Resolve(cfg *model.Configuration, query string) ([]*model.Tree, error) {
	trees, err := resolveTop(cfg, query)
	if err != nil {
		return nil, err
	}

	return dedupe(trees), nil
}

// ResolveGarden returns the single named Garden a query denotes, so the
// Executor can compose the outermost (garden) layer of the Scope Composer's
// stack for that invocation (spec.md §4.5). It recognizes an explicit
// ":name" garden sigil or a bare name that is an exact garden match; any
// other query (tree/group reference, glob, graft-qualified pattern with
// more than one candidate) is not garden-scoped and returns ok=false.
func ResolveGarden(cfg *model.Configuration, query string) (g *model.Garden, ok bool) {
	name := query
	if strings.HasPrefix(query, ":") {
		name = query[1:]
	} else {
		// A bare name that is also an exact tree or group resolves as that
		// tree or group (tree > group > garden), so it is not garden-scoped.
		if _, isTree := cfg.Trees[name]; isTree {
			return nil, false
		}

		if _, isGroup := cfg.Groups[name]; isGroup {
			return nil, false
		}
	}

	if isGlob(name) {
		return nil, false
	}

	g, found := cfg.Gardens[name]

	return g, found
}

func resolveTop(cfg *model.Configuration, query string) ([]*model.Tree, error) {
	switch {
	case strings.HasPrefix(query, "@"):
		return resolveTreePattern(cfg, query[1:])
	case strings.HasPrefix(query, "%"):
		return resolveGroupPattern(cfg, query[1:])
	case strings.HasPrefix(query, ":"):
		return resolveGardenPattern(cfg, query[1:])
	}

	// Unqualified: ambiguity priority is exact tree > exact group > exact
	// garden (spec.md §4.6 step 1).
	if _, ok := cfg.Trees[query]; ok {
		return resolveTreePattern(cfg, query)
	}

	if _, ok := cfg.Groups[query]; ok {
		return resolveGroupPattern(cfg, query)
	}

	if _, ok := cfg.Gardens[query]; ok {
		return resolveGardenPattern(cfg, query)
	}

	// No exact match in any namespace: an unqualified glob defaults to the
	// tree namespace, matching the documented examples (`annex/*`, `git*`).
	return resolveTreePattern(cfg, query)
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// splitQualifier splits a graft-qualified pattern at its last "::" boundary,
// returning the namespace prefix (including the trailing "::", empty for an
// unqualified pattern) and the local name/pattern to match within it.
func splitQualifier(s string) (prefix, local string) {
	idx := strings.LastIndex(s, "::")
	if idx < 0 {
		return "", s
	}

	return s[:idx+2], s[idx+2:]
}

func resolveTreePattern(cfg *model.Configuration, pattern string) ([]*model.Tree, error) {
	if t, ok := cfg.Trees[pattern]; ok {
		return []*model.Tree{t}, nil
	}

	prefix, local := splitQualifier(pattern)

	var matches []*model.Tree

	for _, canon := range cfg.TreeOrder {
		if !strings.HasPrefix(canon, prefix) {
			continue
		}

		remainder := strings.TrimPrefix(canon, prefix)
		if strings.Contains(remainder, "::") {
			continue
		}

		ok, err := doublestar.Match(local, remainder)
		if err != nil {
			return nil, fmt.Errorf("invalid query pattern %q: %w", pattern, err)
		}

		if ok {
			matches = append(matches, cfg.Trees[canon])
		}
	}

	if len(matches) == 0 && !isGlob(pattern) {
		return nil, fmt.Errorf("no tree matches %q", pattern)
	}

	return matches, nil
}

func resolveGroupPattern(cfg *model.Configuration, pattern string) ([]*model.Tree, error) {
	groups, err := matchGroups(cfg, pattern)
	if err != nil {
		return nil, err
	}

	var trees []*model.Tree

	for _, g := range groups {
		for _, member := range g.Members {
			matched, err := resolveTreePattern(cfg, qualifyMember(g.GraftPath, member))
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.CanonicalName, err)
			}

			trees = append(trees, matched...)
		}
	}

	return trees, nil
}

func matchGroups(cfg *model.Configuration, pattern string) ([]*model.Group, error) {
	if g, ok := cfg.Groups[pattern]; ok {
		return []*model.Group{g}, nil
	}

	prefix, local := splitQualifier(pattern)

	var matches []*model.Group

	for _, canon := range cfg.GroupOrder {
		if !strings.HasPrefix(canon, prefix) {
			continue
		}

		remainder := strings.TrimPrefix(canon, prefix)
		if strings.Contains(remainder, "::") {
			continue
		}

		ok, err := doublestar.Match(local, remainder)
		if err != nil {
			return nil, fmt.Errorf("invalid query pattern %q: %w", pattern, err)
		}

		if ok {
			matches = append(matches, cfg.Groups[canon])
		}
	}

	if len(matches) == 0 && !isGlob(pattern) {
		return nil, fmt.Errorf("no group matches %q", pattern)
	}

	return matches, nil
}

func resolveGardenPattern(cfg *model.Configuration, pattern string) ([]*model.Tree, error) {
	gardens, err := matchGardens(cfg, pattern)
	if err != nil {
		return nil, err
	}

	var trees []*model.Tree

	for _, g := range gardens {
		for _, groupRef := range g.Groups {
			matched, err := resolveGroupPattern(cfg, qualifyMember(g.GraftPath, groupRef))
			if err != nil {
				return nil, fmt.Errorf("garden %q: %w", g.CanonicalName, err)
			}

			trees = append(trees, matched...)
		}

		for _, treeRef := range g.Trees {
			matched, err := resolveTreePattern(cfg, qualifyMember(g.GraftPath, treeRef))
			if err != nil {
				return nil, fmt.Errorf("garden %q: %w", g.CanonicalName, err)
			}

			trees = append(trees, matched...)
		}
	}

	return trees, nil
}

func matchGardens(cfg *model.Configuration, pattern string) ([]*model.Garden, error) {
	if g, ok := cfg.Gardens[pattern]; ok {
		return []*model.Garden{g}, nil
	}

	prefix, local := splitQualifier(pattern)

	var matches []*model.Garden

	for _, canon := range cfg.GardenOrder {
		if !strings.HasPrefix(canon, prefix) {
			continue
		}

		remainder := strings.TrimPrefix(canon, prefix)
		if strings.Contains(remainder, "::") {
			continue
		}

		ok, err := doublestar.Match(local, remainder)
		if err != nil {
			return nil, fmt.Errorf("invalid query pattern %q: %w", pattern, err)
		}

		if ok {
			matches = append(matches, cfg.Gardens[canon])
		}
	}

	if len(matches) == 0 && !isGlob(pattern) {
		return nil, fmt.Errorf("no garden matches %q", pattern)
	}

	return matches, nil
}

// qualifyMember rebases a group/garden member reference (which is written
// relative to the document it was declared in) under that document's own
// graft namespace, so an unqualified member inside a grafted group still
// resolves against that graft's trees rather than the root's.
func qualifyMember(graftPath, member string) string {
	if strings.Contains(member, "::") {
		return member
	}

	return graftPath + member
}

func dedupe(trees []*model.Tree) []*model.Tree {
	seen := map[string]bool{}

	out := make([]*model.Tree, 0, len(trees))
	for _, t := range trees {
		if seen[t.CanonicalName] {
			continue
		}

		seen[t.CanonicalName] = true

		out = append(out, t)
	}

	return out
}
