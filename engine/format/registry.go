// Package format is the formatter registry: named pure functions with
// arity/type metadata, a validator, and a chain execution model.
package format

import (
	"fmt"
	"sort"

	"docweave/engine/ast"
)

// ExecuteFunc applies one formatter to a value with already-resolved
// arguments; dynamic arguments are resolved by the caller (engine/eval)
// before this is invoked.
type ExecuteFunc func(value any, args []any) (any, error)

// ValidateFunc checks a formatter's constant arguments statically; dynamic
// arguments are skipped, their runtime type being unknown at
// validate-time. It returns a human-readable problem, or "" if valid.
type ValidateFunc func(args []ast.Arg) string

// Category groups formatters for introspection.
type Category string

const (
	CategoryText        Category = "text"
	CategoryNumber      Category = "number"
	CategoryConditional Category = "conditional"
	CategoryMath        Category = "math"
	CategoryAggregation Category = "aggregation"
	CategoryUtility     Category = "utility"
)

// Formatter is one registry entry.
type Formatter struct {
	Name       string
	Category   Category
	ParamTypes []string
	Examples   []string
	Execute    ExecuteFunc
	Validate   ValidateFunc

	// StringOnly marks formatters that only make sense on string input
	// (substr, replace, trim). They may not appear after an aggregation
	// formatter in a chain, whose output is numeric; ValidateChain flags
	// such placements. Case-change formatters are deliberately not marked
	// since they remain legal post-aggregation.
	StringOnly bool
}

// Description is the read-only introspection view of a Formatter,
// returned by Registry.Describe: a host UI can list available formatters
// without reaching into execution internals.
type Description struct {
	Name       string
	Category   Category
	ParamTypes []string
	Examples   []string
}

// Registry is a read-only-after-init mapping from formatter name to
// implementation. Registration must complete before the first render;
// after that it is safe for concurrent readers.
type Registry struct {
	entries map[string]Formatter
}

// NewRegistry builds a registry pre-populated with the built-ins.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Formatter)}
	registerBuiltins(r)
	return r
}

// Register adds or replaces a formatter. Intended to run during
// initialization, before any render begins.
func (r *Registry) Register(f Formatter) {
	r.entries[f.Name] = f
}

// Get returns the formatter for name.
func (r *Registry) Get(name string) (Formatter, bool) {
	f, ok := r.entries[name]
	return f, ok
}

// Describe lists every registered formatter, sorted by name, for host-UI
// introspection.
func (r *Registry) Describe() []Description {
	out := make([]Description, 0, len(r.entries))
	for _, f := range r.entries {
		out = append(out, Description{
			Name:       f.Name,
			Category:   f.Category,
			ParamTypes: f.ParamTypes,
			Examples:   f.Examples,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValidateChain checks every call in a formatter chain against the
// registry: unknown names, constant-argument validators, and formatter
// placement (string-only and array-only formatters may not follow an
// aggregation formatter, whose output is numeric). strict controls whether
// UNKNOWN_FORMATTER/INVALID_PARAMETERS are returned as fatal errors or
// collected as warnings.
func (r *Registry) ValidateChain(calls []ast.FormatterCall, strict bool) (errs []error, warnings []string) {
	report := func(err error) {
		if strict {
			errs = append(errs, err)
		} else {
			warnings = append(warnings, err.Error())
		}
	}

	seenAggregation := false
	for _, call := range calls {
		f, ok := r.Get(call.Name)
		if !ok {
			report(&UnknownFormatterError{Name: call.Name})
			continue
		}
		if seenAggregation {
			switch {
			case f.StringOnly:
				report(&InvalidParametersError{Name: call.Name, Message: "string-only formatter may not appear after an aggregation"})
			case f.Category == CategoryAggregation:
				report(&InvalidParametersError{Name: call.Name, Message: "aggregation formatter may not appear after another aggregation"})
			}
		}
		if f.Category == CategoryAggregation {
			seenAggregation = true
		}
		if f.Validate == nil {
			continue
		}
		if problem := f.Validate(call.Args); problem != "" {
			report(&InvalidParametersError{Name: call.Name, Message: problem})
		}
	}
	return errs, warnings
}

func arityError(name string, want int, got int) string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", name, want, got)
}

func requireArgs(n int, name string) ValidateFunc {
	return func(args []ast.Arg) string {
		if len(args) != n {
			return arityError(name, n, len(args))
		}
		return ""
	}
}
