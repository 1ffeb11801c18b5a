// Package depgraph builds the directed graph of cross-tag references: a
// dynamic formatter argument whose path equals or extends another tag's
// path depends on that tag. The graph exists for cycle detection and
// future computed-tag ordering; the renderer itself does not require
// topological order for independent scalar tags.
package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"docweave/engine/ast"
)

// Edge is one dependency: From depends on To.
type Edge struct {
	From string
	To   string
}

// CircularDependencyError reports a cycle found while building the graph.
type CircularDependencyError struct {
	Cycle []string // tag ids, in cycle order
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("CIRCULAR_DEPENDENCY: %s", strings.Join(e.Cycle, " -> "))
}

// Graph is the dependency graph over a ParsedTemplate's tags.
type Graph struct {
	Edges []Edge
	Order []string // topological order of tag ids

	adjacency map[string][]string
}

// Build collects dependency edges between tags and computes a topological
// order, failing with *CircularDependencyError if one cannot be found.
func Build(tags []*ast.Tag) (*Graph, error) {
	byAbsPath := make(map[string]string, len(tags)) // absolute path key -> tag id
	for _, t := range tags {
		if t.Path == nil {
			continue
		}
		byAbsPath[absPathKey(t.Path)] = t.ID
	}

	adjacency := make(map[string][]string, len(tags))
	var edges []Edge
	for _, t := range tags {
		adjacency[t.ID] = nil
		for _, fc := range t.Formatters {
			for _, arg := range fc.Args {
				if arg.Kind != ast.ArgDynamic || arg.Path == nil {
					continue
				}
				if arg.Path.Scope == ast.ScopeCurrent {
					// Relative arguments resolve against the live
					// iteration/aggregation element, not another tag.
					continue
				}
				argKey := absPathKey(arg.Path)
				for candidateKey, toID := range byAbsPath {
					if toID == t.ID {
						continue
					}
					if argKey == candidateKey || strings.HasPrefix(argKey, candidateKey+".") {
						adjacency[t.ID] = append(adjacency[t.ID], toID)
						edges = append(edges, Edge{From: t.ID, To: toID})
					}
				}
			}
		}
	}

	order, err := topoSort(tags, adjacency)
	if err != nil {
		return nil, err
	}

	return &Graph{Edges: edges, Order: order, adjacency: adjacency}, nil
}

// DependsOn reports the tag ids that tagID directly depends on.
func (g *Graph) DependsOn(tagID string) []string {
	return g.adjacency[tagID]
}

func absPathKey(p *ast.Path) string {
	switch p.Scope {
	case ast.ScopeRoot:
		return "d." + p.Raw
	case ast.ScopeComplement:
		return "c." + p.Raw
	case ast.ScopeOption:
		return "o." + p.Raw
	default:
		return "." + p.Raw
	}
}

const (
	white = 0
	gray  = 1
	black = 2
)

func topoSort(tags []*ast.Tag, adjacency map[string][]string) ([]string, error) {
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids) // deterministic iteration regardless of map order

	color := make(map[string]int, len(ids))
	var order []string
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			cycle := append(append([]string{}, stack...), id)
			return &CircularDependencyError{Cycle: cycle}
		}
		color[id] = gray
		stack = append(stack, id)
		for _, dep := range adjacency[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		order = append(order, id)
		return nil
	}

	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}
