package format

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"docweave/engine/ast"
	"docweave/engine/resolve"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

func toStr(v any) string {
	return resolve.ToStringLoose(v)
}

func registerBuiltins(r *Registry) {
	r.Register(Formatter{
		Name: "upperCase", Category: CategoryText,
		ParamTypes: nil, Examples: []string{`{d.name:upperCase}`},
		Execute: func(value any, args []any) (any, error) {
			return upperCaser.String(toStr(value)), nil
		},
	})
	r.Register(Formatter{
		Name: "lowerCase", Category: CategoryText,
		Examples: []string{`{d.name:lowerCase}`},
		Execute: func(value any, args []any) (any, error) {
			return lowerCaser.String(toStr(value)), nil
		},
	})
	r.Register(Formatter{
		Name: "ucFirst", Category: CategoryText,
		Examples: []string{`{d.name:ucFirst}`},
		Execute: func(value any, args []any) (any, error) {
			s := toStr(value)
			if s == "" {
				return s, nil
			}
			r, size := utf8.DecodeRuneInString(s)
			return string(unicode.ToUpper(r)) + s[size:], nil
		},
	})
	r.Register(Formatter{
		Name: "trim", Category: CategoryText, StringOnly: true,
		Examples: []string{`{d.name:trim}`},
		Execute: func(value any, args []any) (any, error) {
			return strings.TrimSpace(toStr(value)), nil
		},
	})
	r.Register(Formatter{
		Name: "substr", Category: CategoryText, StringOnly: true,
		ParamTypes: []string{"int", "int?"},
		Examples:   []string{`{d.name:substr(0,3)}`},
		Validate: func(args []ast.Arg) string {
			if len(args) < 1 || len(args) > 2 {
				return arityError("substr", 1, len(args))
			}
			return ""
		},
		Execute: func(value any, args []any) (any, error) {
			runes := []rune(toStr(value))
			start := intArg(args, 0, 0)
			if start < 0 {
				start += len(runes)
			}
			if start < 0 {
				start = 0
			}
			if start > len(runes) {
				start = len(runes)
			}
			length := len(runes) - start
			if len(args) > 1 {
				length = intArg(args, 1, length)
			}
			end := start + length
			if end > len(runes) {
				end = len(runes)
			}
			if end < start {
				end = start
			}
			return string(runes[start:end]), nil
		},
	})
	r.Register(Formatter{
		Name: "replace", Category: CategoryText, StringOnly: true,
		ParamTypes: []string{"string", "string"},
		Examples:   []string{`{d.name:replace('-',' ')}`},
		Validate: func(args []ast.Arg) string {
			if len(args) != 2 {
				return arityError("replace", 2, len(args))
			}
			return ""
		},
		Execute: func(value any, args []any) (any, error) {
			search := strArg(args, 0)
			repl := strArg(args, 1)
			return strings.ReplaceAll(toStr(value), search, repl), nil
		},
	})
	r.Register(Formatter{
		Name: "round", Category: CategoryNumber,
		ParamTypes: []string{"int?"},
		Examples:   []string{`{d.total:round(2)}`},
		Execute: func(value any, args []any) (any, error) {
			n, _ := resolve.Numeric(value)
			decimals := 0
			if len(args) > 0 {
				decimals = intArg(args, 0, 0)
			}
			scale := math.Pow(10, float64(decimals))
			return math.Floor(n*scale+0.5) / scale, nil
		},
	})

	registerArithmetic(r, "add", func(a, b float64) float64 { return a + b })
	registerArithmetic(r, "sub", func(a, b float64) float64 { return a - b })
	registerArithmetic(r, "mul", func(a, b float64) float64 { return a * b })
	r.Register(Formatter{
		Name: "div", Category: CategoryMath,
		ParamTypes: []string{"number"},
		Examples:   []string{`{d.total:div(2)}`},
		Validate:   requireArgs(1, "div"),
		Execute: func(value any, args []any) (any, error) {
			a, _ := resolve.Numeric(value)
			b, _ := resolve.Numeric(firstArg(args))
			if b == 0 {
				return math.Inf(sign(a)), nil
			}
			return a / b, nil
		},
	})

	registerComparator(r, "eq", resolve.LooseEquals)
	registerComparator(r, "ne", func(a, b any) bool { return !resolve.LooseEquals(a, b) })
	r.Register(Formatter{Name: "gt", Category: CategoryConditional, ParamTypes: []string{"any"}, Validate: requireArgs(1, "gt"), Execute: compareExec(func(c int) bool { return c > 0 })})
	r.Register(Formatter{Name: "lt", Category: CategoryConditional, ParamTypes: []string{"any"}, Validate: requireArgs(1, "lt"), Execute: compareExec(func(c int) bool { return c < 0 })})
	r.Register(Formatter{Name: "gte", Category: CategoryConditional, ParamTypes: []string{"any"}, Validate: requireArgs(1, "gte"), Execute: compareExec(func(c int) bool { return c >= 0 })})
	r.Register(Formatter{Name: "lte", Category: CategoryConditional, ParamTypes: []string{"any"}, Validate: requireArgs(1, "lte"), Execute: compareExec(func(c int) bool { return c <= 0 })})

	r.Register(Formatter{
		Name: "ifTrue", Category: CategoryConditional,
		ParamTypes: []string{"any", "any?"},
		Examples:   []string{`{d.status:eq('active'):ifTrue('ON','OFF')}`},
		Validate: func(args []ast.Arg) string {
			if len(args) < 1 || len(args) > 2 {
				return arityError("ifTrue", 1, len(args))
			}
			return ""
		},
		Execute: func(value any, args []any) (any, error) {
			if truthy(value) {
				return firstArg(args), nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return "", nil
		},
	})
	r.Register(Formatter{
		Name: "ifEmpty", Category: CategoryConditional,
		ParamTypes: []string{"any"},
		Examples:   []string{`{d.nickname:ifEmpty(d.name)}`},
		Validate:   requireArgs(1, "ifEmpty"),
		Execute: func(value any, args []any) (any, error) {
			if resolve.IsEmpty(value) {
				return firstArg(args), nil
			}
			return value, nil
		},
	})

	registerAggregations(r)
}

func registerArithmetic(r *Registry, name string, op func(a, b float64) float64) {
	r.Register(Formatter{
		Name: name, Category: CategoryMath,
		ParamTypes: []string{"number"},
		Examples:   []string{fmt.Sprintf(`{d.qty:%s(2)}`, name)},
		Validate:   requireArgs(1, name),
		Execute: func(value any, args []any) (any, error) {
			a, _ := resolve.Numeric(value)
			b, _ := resolve.Numeric(firstArg(args))
			return op(a, b), nil
		},
	})
}

func registerComparator(r *Registry, name string, equalsFallback func(a, b any) bool) {
	r.Register(Formatter{
		Name: name, Category: CategoryConditional,
		ParamTypes: []string{"any"},
		Validate:   requireArgs(1, name),
		Execute: func(value any, args []any) (any, error) {
			return equalsFallback(value, firstArg(args)), nil
		},
	})
}

func compareExec(accept func(cmp int) bool) ExecuteFunc {
	return func(value any, args []any) (any, error) {
		cmp, ok := resolve.Compare(value, firstArg(args))
		if !ok {
			return false, nil
		}
		return accept(cmp), nil
	}
}

func registerAggregations(r *Registry) {
	agg := func(name string, reduce func(nums []float64, count int) float64) {
		r.Register(Formatter{
			Name: name, Category: CategoryAggregation,
			Examples: []string{fmt.Sprintf(`{d.items[].qty:%s()}`, name)},
			Execute: func(value any, args []any) (any, error) {
				nums, ok := value.([]float64)
				if !ok {
					return 0.0, fmt.Errorf("%s requires a numeric element list", name)
				}
				return reduce(nums, len(nums)), nil
			},
		})
	}
	agg("aggSum", func(nums []float64, _ int) float64 {
		var sum float64
		for _, n := range nums {
			sum += n
		}
		return sum
	})
	agg("aggAvg", func(nums []float64, count int) float64 {
		if count == 0 {
			return 0
		}
		var sum float64
		for _, n := range nums {
			sum += n
		}
		return sum / float64(count)
	})
	agg("aggCount", func(nums []float64, count int) float64 {
		return float64(count)
	})
	agg("aggMin", func(nums []float64, count int) float64 {
		if count == 0 {
			return 0
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n < m {
				m = n
			}
		}
		return m
	})
	agg("aggMax", func(nums []float64, count int) float64 {
		if count == 0 {
			return 0
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n > m {
				m = n
			}
		}
		return m
	})
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	case string:
		return t != ""
	default:
		if n, ok := resolve.Numeric(v); ok {
			return n != 0
		}
		return !resolve.IsEmpty(v)
	}
}

func sign(f float64) int {
	if f < 0 {
		return -1
	}
	return 1
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func strArg(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	return toStr(args[i])
}

func intArg(args []any, i int, def int) int {
	if i >= len(args) {
		return def
	}
	n, ok := resolve.Numeric(args[i])
	if !ok {
		return def
	}
	return int(n)
}
