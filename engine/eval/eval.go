// Package eval ties the resolver and formatter registry together: it
// resolves a tag's scalar, aggregation, or per-row iteration value and
// drives its formatter chain.
package eval

import (
	"docweave/engine/ast"
	"docweave/engine/format"
	"docweave/engine/resolve"
)

// ResolveArg turns one formatter argument into a runtime value: constants
// pass through verbatim, dynamic arguments resolve against ctx.
func ResolveArg(arg ast.Arg, ctx resolve.Context) any {
	switch arg.Kind {
	case ast.ArgString:
		return arg.Str
	case ast.ArgNumber:
		return arg.Num
	case ast.ArgBool:
		return arg.Bool
	case ast.ArgDynamic:
		v, err := resolve.ResolveScalar(arg.Path, ctx)
		if err != nil || resolve.IsUndefined(v) {
			return resolve.Undefined
		}
		return v
	default:
		return nil
	}
}

func resolveArgs(args []ast.Arg, ctx resolve.Context) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = ResolveArg(a, ctx)
	}
	return out
}

// ApplyChain runs a tag's formatter chain left to right, the output of one
// call becoming the input of the next. Unknown formatters are
// a skip-with-warning outside strict mode; a failing call's error aborts
// the chain and the caller substitutes the empty string.
func ApplyChain(reg *format.Registry, value any, calls []ast.FormatterCall, ctx resolve.Context, strict bool) (any, []string, error) {
	cur := value
	var warnings []string
	for _, call := range calls {
		f, ok := reg.Get(call.Name)
		if !ok {
			err := &format.UnknownFormatterError{Name: call.Name}
			if strict {
				return nil, warnings, err
			}
			warnings = append(warnings, err.Error())
			continue
		}
		args := resolveArgs(call.Args, ctx)
		result, err := f.Execute(cur, args)
		if err != nil {
			return nil, warnings, err
		}
		cur = result
	}
	return cur, warnings, nil
}

// EvaluateScalar resolves a non-iteration, non-aggregation tag's value
// and runs its formatter chain with currentData set to the resolved
// value. Data/complement/option tags resolve through a path; translation
// and alias tags resolve through their own lookup.
func EvaluateScalar(tag *ast.Tag, reg *format.Registry, ctx resolve.Context, strict bool) (any, []string, error) {
	val, descriptor, err := resolveTagValue(tag, ctx)
	if err != nil {
		return "", nil, &resolve.Error{TagID: tag.ID, Path: descriptor, Message: err.Error()}
	}
	if resolve.IsUndefined(val) {
		return "", nil, &resolve.Error{TagID: tag.ID, Path: descriptor, Message: "path not found"}
	}
	result, warnings, err := ApplyChain(reg, val, tag.Formatters, ctx.WithCurrent(val), strict)
	if err != nil {
		return "", warnings, &resolve.Error{TagID: tag.ID, Path: descriptor, Message: err.Error()}
	}
	return result, warnings, nil
}

// resolveTagValue dispatches on tag.Kind, returning the raw
// (pre-formatter) value and a descriptor string used in error reporting.
func resolveTagValue(tag *ast.Tag, ctx resolve.Context) (any, string, error) {
	switch tag.Kind {
	case ast.KindTranslation:
		return resolve.ResolveTranslation(ctx, tag.TranslationKey), "t(" + tag.TranslationKey + ")", nil
	case ast.KindAlias:
		v, ok := resolve.ResolveAlias(ctx, tag.AliasName)
		if !ok {
			return resolve.Undefined, "#" + tag.AliasName, nil
		}
		return v, "#" + tag.AliasName, nil
	default:
		v, err := resolve.ResolveScalar(tag.Path, ctx)
		return v, tag.Path.Raw, err
	}
}

// EvaluateRow resolves one iteration tag's value for a single array
// element; the tag's formatter chain runs with currentData set to the
// element.
func EvaluateRow(tag *ast.Tag, reg *format.Registry, elem any, tail []ast.Segment, ctx resolve.Context, strict bool) (any, []string, error) {
	val, err := resolve.ResolveTail(elem, tail)
	if err != nil {
		return "", nil, &resolve.Error{TagID: tag.ID, Path: tag.Path.Raw, Message: err.Error()}
	}
	rowCtx := ctx.WithCurrent(elem)
	result, warnings, err := ApplyChain(reg, val, tag.Formatters, rowCtx, strict)
	if err != nil {
		return "", warnings, &resolve.Error{TagID: tag.ID, Path: tag.Path.Raw, Message: err.Error()}
	}
	return result, warnings, nil
}

// aggregationSplit finds the aggregation formatter in a chain, separating
// it from the per-element formatters that precede it and the
// post-aggregation formatters that follow.
func aggregationSplit(reg *format.Registry, calls []ast.FormatterCall) (pre []ast.FormatterCall, agg *ast.FormatterCall, post []ast.FormatterCall) {
	for i, call := range calls {
		if f, ok := reg.Get(call.Name); ok && f.Category == format.CategoryAggregation {
			c := call
			return calls[:i], &c, calls[i+1:]
		}
	}
	return calls, nil, nil
}

// EvaluateAggregation resolves an aggregation tag's base array, applies
// the per-element formatter chain with currentData set to each element,
// coerces to numeric, reduces with the aggregation formatter, then
// applies any post-aggregation formatters. Relative dynamic arguments in
// the per-element chain resolve against the element itself, so a tag
// like {d.items[].qty:mul(.price):aggSum()} multiplies each item's qty
// by its own price before summing.
func EvaluateAggregation(tag *ast.Tag, reg *format.Registry, ctx resolve.Context, strict bool) (any, []string, error) {
	base, err := resolve.ResolveAggregationBase(tag.Path, ctx)
	if err != nil {
		return "", nil, &resolve.Error{TagID: tag.ID, Path: tag.Path.Raw, Message: err.Error()}
	}

	pre, agg, post := aggregationSplit(reg, tag.Formatters)
	if agg == nil {
		return "", nil, &resolve.Error{TagID: tag.ID, Path: tag.Path.Raw, Message: "aggregation tag carries no aggregation formatter"}
	}
	aggFormatter, _ := reg.Get(agg.Name)
	countOnly := agg.Name == "aggCount"

	var warnings []string
	nums := make([]float64, 0, len(base.Array))
	for _, elem := range base.Array {
		elemVal, err := resolve.ResolveTail(elem, base.Tail)
		if err != nil {
			return "", warnings, &resolve.Error{TagID: tag.ID, Path: tag.Path.Raw, Message: err.Error()}
		}
		elemCtx := ctx.WithCurrent(elem)
		cur, w, err := ApplyChain(reg, elemVal, pre, elemCtx, strict)
		warnings = append(warnings, w...)
		if err != nil {
			return "", warnings, &resolve.Error{TagID: tag.ID, Path: tag.Path.Raw, Message: err.Error()}
		}
		if countOnly {
			nums = append(nums, 0)
			continue
		}
		n, _ := resolve.Numeric(cur)
		nums = append(nums, n)
	}

	aggArgs := resolveArgs(agg.Args, ctx)
	reduced, err := aggFormatter.Execute(nums, aggArgs)
	if err != nil {
		return "", warnings, &resolve.Error{TagID: tag.ID, Path: tag.Path.Raw, Message: err.Error()}
	}

	result, w, err := ApplyChain(reg, reduced, post, ctx, strict)
	warnings = append(warnings, w...)
	if err != nil {
		return "", warnings, &resolve.Error{TagID: tag.ID, Path: tag.Path.Raw, Message: err.Error()}
	}
	return result, warnings, nil
}
