package resolve

import (
	"fmt"
	"strings"

	"docweave/engine/ast"
)

// filterArray retains the elements of arr for which every predicate
// holds.
func filterArray(arr []any, preds []ast.Predicate) ([]any, error) {
	if len(preds) == 0 {
		return arr, nil
	}
	out := make([]any, 0, len(arr))
	for _, el := range arr {
		ok, err := matchAll(el, preds)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, el)
		}
	}
	return out, nil
}

func matchAll(el any, preds []ast.Predicate) (bool, error) {
	for _, p := range preds {
		v := descend(el, p.Property)
		ok, err := evalPredicate(v, p.Op, p.Literal)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalPredicate(v any, op ast.Operator, lit any) (bool, error) {
	switch op {
	case ast.OpEq:
		return LooseEquals(v, lit), nil
	case ast.OpNe:
		return !LooseEquals(v, lit), nil
	case ast.OpGt, ast.OpLt, ast.OpGte, ast.OpLte:
		cmp, ok := Compare(v, lit)
		if !ok {
			return false, nil
		}
		switch op {
		case ast.OpGt:
			return cmp > 0, nil
		case ast.OpLt:
			return cmp < 0, nil
		case ast.OpGte:
			return cmp >= 0, nil
		default:
			return cmp <= 0, nil
		}
	case ast.OpContains, ast.OpStartsWith, ast.OpEndsWith:
		a := strings.ToLower(ToStringLoose(v))
		b := strings.ToLower(ToStringLoose(lit))
		switch op {
		case ast.OpContains:
			return strings.Contains(a, b), nil
		case ast.OpStartsWith:
			return strings.HasPrefix(a, b), nil
		default:
			return strings.HasSuffix(a, b), nil
		}
	case ast.OpIn:
		return evalIn(v, lit), nil
	default:
		return false, fmt.Errorf("unsupported filter operator %v", op)
	}
}

// evalIn implements the 'in' operator: a comma-separated string literal is
// split into candidates; a list literal is compared element-wise.
func evalIn(v, lit any) bool {
	target := ToStringLoose(v)
	switch l := lit.(type) {
	case string:
		for _, candidate := range SplitCSV(l) {
			if candidate == target {
				return true
			}
		}
		return false
	case []any:
		for _, candidate := range l {
			if LooseEquals(candidate, v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
