package resolve

import (
	"fmt"

	"docweave/engine/ast"
)

// IterationSpec is the pending expansion produced by a path carrying an
// '[i]' or '[i±N]' bracket: the array to iterate, the offset, and the
// per-element path evaluated during row expansion.
type IterationSpec struct {
	Array  []any
	Offset int
	Tail   []ast.Segment
	// BaseKey identifies the array this spec was drawn from (scope plus
	// the dotted segment names up to and including the iteration
	// segment), so the renderer can tell whether two iteration tags on
	// the same line share a source array.
	BaseKey string
}

// AggregationSpec is the pending reduction produced by a path carrying an
// empty '[]' bracket: the (already filtered) base array and the
// per-element post-bracket path.
type AggregationSpec struct {
	Array []any
	Tail  []ast.Segment
}

func rootValue(scope ast.Scope, ctx Context) any {
	switch scope {
	case ast.ScopeRoot:
		return ctx.Root
	case ast.ScopeComplement:
		return ctx.Complement
	case ast.ScopeOption:
		return ctx.Options
	default:
		return ctx.Current
	}
}

func scopePrefix(scope ast.Scope) string {
	switch scope {
	case ast.ScopeRoot:
		return "d"
	case ast.ScopeComplement:
		return "c"
	case ast.ScopeOption:
		return "o"
	default:
		return ""
	}
}

func descend(cur any, name string) any {
	if cur == nil || IsUndefined(cur) {
		return Undefined
	}
	m, ok := cur.(map[string]any)
	if !ok {
		return Undefined
	}
	v, ok := m[name]
	if !ok {
		return Undefined
	}
	return v
}

func toArray(cur any) ([]any, bool) {
	arr, ok := cur.([]any)
	return arr, ok
}

func applyIndex(cur any, index int) any {
	arr, ok := toArray(cur)
	if !ok {
		return Undefined
	}
	i := index
	if i < 0 {
		i += len(arr)
	}
	if i < 0 || i >= len(arr) {
		return Undefined
	}
	return arr[i]
}

// ResolveScalar walks a path containing no iteration or aggregation
// bracket, applying name descent, positional indexing, and filters.
func ResolveScalar(path *ast.Path, ctx Context) (any, error) {
	cur := rootValue(path.Scope, ctx)
	for _, seg := range path.Segments {
		cur = descend(cur, seg.Name)
		if len(seg.Predicates) > 0 {
			arr, ok := toArray(cur)
			if !ok {
				return Undefined, nil
			}
			filtered, err := filterArray(arr, seg.Predicates)
			if err != nil {
				return nil, err
			}
			cur = filtered
		}
		switch seg.Bracket {
		case ast.BracketNone:
		case ast.BracketIndex:
			cur = applyIndex(cur, seg.Index)
		default:
			return nil, fmt.Errorf("path %q carries an iteration/aggregation bracket where a scalar was expected", path.Raw)
		}
		if IsUndefined(cur) {
			return Undefined, nil
		}
	}
	return cur, nil
}

// ResolveIteration walks a path up to and including its first '[i]'/'[i±N]'
// segment (applying any filters on that segment first), returning the base
// array and the remaining per-element path.
func ResolveIteration(path *ast.Path, ctx Context) (*IterationSpec, error) {
	cur := rootValue(path.Scope, ctx)
	baseKey := scopePrefix(path.Scope)
	for i, seg := range path.Segments {
		cur = descend(cur, seg.Name)
		baseKey += "." + seg.Name
		if len(seg.Predicates) > 0 {
			arr, ok := toArray(cur)
			if !ok {
				return nil, fmt.Errorf("filter on non-array at %q", seg.Name)
			}
			filtered, err := filterArray(arr, seg.Predicates)
			if err != nil {
				return nil, err
			}
			cur = filtered
		}

		switch seg.Bracket {
		case ast.BracketIteration, ast.BracketIterationOffset:
			arr, ok := toArray(cur)
			if !ok {
				return nil, fmt.Errorf("iteration marker on non-array at %q", seg.Name)
			}
			return &IterationSpec{Array: arr, Offset: seg.Offset, Tail: path.Segments[i+1:], BaseKey: baseKey}, nil
		case ast.BracketIndex:
			cur = applyIndex(cur, seg.Index)
		case ast.BracketNone:
		default:
			return nil, fmt.Errorf("unexpected aggregation bracket in iteration path %q", path.Raw)
		}
	}
	return nil, fmt.Errorf("path %q carries no iteration marker", path.Raw)
}

// ResolveAggregationBase walks a path up to and including its first '[]'
// segment (applying any filters on that segment first), returning the base
// array and the remaining per-element post-bracket path.
func ResolveAggregationBase(path *ast.Path, ctx Context) (*AggregationSpec, error) {
	cur := rootValue(path.Scope, ctx)
	for i, seg := range path.Segments {
		cur = descend(cur, seg.Name)
		if len(seg.Predicates) > 0 {
			arr, ok := toArray(cur)
			if !ok {
				return nil, fmt.Errorf("filter on non-array at %q", seg.Name)
			}
			filtered, err := filterArray(arr, seg.Predicates)
			if err != nil {
				return nil, err
			}
			cur = filtered
		}

		switch seg.Bracket {
		case ast.BracketAggregation:
			arr, ok := toArray(cur)
			if !ok {
				return nil, fmt.Errorf("aggregation marker on non-array at %q", seg.Name)
			}
			return &AggregationSpec{Array: arr, Tail: path.Segments[i+1:]}, nil
		case ast.BracketIndex:
			cur = applyIndex(cur, seg.Index)
		case ast.BracketNone:
		default:
			return nil, fmt.Errorf("unexpected iteration bracket in aggregation path %q", path.Raw)
		}
	}
	return nil, fmt.Errorf("path %q carries no aggregation marker", path.Raw)
}

// ResolveTail evaluates a post-bracket per-element path (the remainder
// after an iteration or aggregation segment) against a single array
// element, honoring any further name descent, indexing, or filters.
func ResolveTail(elem any, tail []ast.Segment) (any, error) {
	cur := elem
	for _, seg := range tail {
		if seg.Name != "" {
			cur = descend(cur, seg.Name)
		}
		if len(seg.Predicates) > 0 {
			arr, ok := toArray(cur)
			if !ok {
				return Undefined, nil
			}
			filtered, err := filterArray(arr, seg.Predicates)
			if err != nil {
				return nil, err
			}
			cur = filtered
		}
		switch seg.Bracket {
		case ast.BracketNone:
		case ast.BracketIndex:
			cur = applyIndex(cur, seg.Index)
		default:
			return nil, fmt.Errorf("nested iteration/aggregation brackets are not supported in a post-bracket path")
		}
		if IsUndefined(cur) {
			return Undefined, nil
		}
	}
	return cur, nil
}
