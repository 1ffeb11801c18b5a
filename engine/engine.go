// Package engine is the public facade over the template processing
// pipeline: tokenize, parse, analyze dependencies, resolve, and render.
package engine

import (
	"context"

	"docweave/engine/ast"
	"docweave/engine/depgraph"
	"docweave/engine/format"
	"docweave/engine/parse"
	"docweave/engine/resolve"

	renderpkg "docweave/engine/render"
)

// SyntaxError and CircularDependencyError are the two fatal parse-time
// failure types, re-exported so hosts can errors.As against the facade
// package alone.
type (
	SyntaxError             = parse.SyntaxError
	CircularDependencyError = depgraph.CircularDependencyError
)

// ParsedTemplate owns the raw template bytes, its ordered tag list, and
// the dependency graph built over them. Immutable after parsing.
type ParsedTemplate struct {
	Raw   string
	Tags  []*ast.Tag
	Graph *depgraph.Graph
}

// ParseTemplate tokenizes and parses raw into a ParsedTemplate, building
// its dependency graph and failing on any SYNTAX_ERROR or
// CIRCULAR_DEPENDENCY. The parser is strict; leniency belongs to
// resolution.
func ParseTemplate(raw string) (*ParsedTemplate, error) {
	tags, err := parse.ParseTemplate(raw)
	if err != nil {
		return nil, err
	}
	graph, err := depgraph.Build(tags)
	if err != nil {
		return nil, err
	}
	return &ParsedTemplate{Raw: raw, Tags: tags, Graph: graph}, nil
}

// Dependencies exposes the parse-time dependency edge set for host
// introspection, kept rather than discarded after the cycle check.
func (pt *ParsedTemplate) Dependencies() []depgraph.Edge {
	return pt.Graph.Edges
}

// Options configures a single render.
type Options struct {
	// Data is the root value tags resolve against ("d." paths).
	Data any
	// Complement is the optional subtree "c." paths resolve against.
	Complement any
	// Option is the bag "o." paths resolve against.
	Option any
	// Strict makes UNKNOWN_FORMATTER/INVALID_PARAMETERS fatal instead of
	// warnings.
	Strict bool
	// Registry overrides the default formatter registry; nil uses
	// format.NewRegistry()'s built-ins.
	Registry *format.Registry

	// Locale and Translator back 't(KEY)' translation tags.
	// Translator is typically an *i18n.MemoryDictionary or
	// *i18n.SQLiteDictionary; left nil, translation tags emit their key.
	Locale     string
	Translator resolve.Translator
	// Aliases backs '#name' alias tags with a flat name -> value table.
	Aliases map[string]any
}

// Render runs the three-stage renderer over pt against opts, returning
// the final bytes and a structured report.
func Render(pt *ParsedTemplate, opts Options) (string, *renderpkg.Report, error) {
	return RenderContext(context.Background(), pt, opts)
}

// RenderContext is Render with cooperative cancellation: ctx is checked
// between render stages and between lines of iteration expansion; a
// canceled render returns ctx.Err() without partial output.
func RenderContext(ctx context.Context, pt *ParsedTemplate, opts Options) (string, *renderpkg.Report, error) {
	reg := opts.Registry
	if reg == nil {
		reg = format.NewRegistry()
	}
	rc := resolve.Context{
		Root:       opts.Data,
		Complement: opts.Complement,
		Options:    opts.Option,
		Current:    opts.Data,
		Locale:     opts.Locale,
		Translator: opts.Translator,
		Aliases:    opts.Aliases,
	}
	return renderpkg.Render(ctx, pt.Raw, pt.Tags, reg, rc, opts.Strict)
}

// RenderString is a convenience wrapper that parses and renders raw in one
// call, for callers that don't need the parsed template or dependency
// graph separately.
func RenderString(raw string, opts Options) (string, *renderpkg.Report, error) {
	pt, err := ParseTemplate(raw)
	if err != nil {
		return "", nil, err
	}
	return Render(pt, opts)
}
