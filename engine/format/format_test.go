package format_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docweave/engine/ast"
	"docweave/engine/format"
)

func exec(t *testing.T, r *format.Registry, name string, value any, args ...any) any {
	t.Helper()
	f, ok := r.Get(name)
	require.True(t, ok, "formatter %s not registered", name)
	v, err := f.Execute(value, args)
	require.NoError(t, err)
	return v
}

func TestBuiltins_TextFormatters(t *testing.T) {
	r := format.NewRegistry()
	assert.Equal(t, "WORLD", exec(t, r, "upperCase", "world"))
	assert.Equal(t, "world", exec(t, r, "lowerCase", "WORLD"))
	assert.Equal(t, "Hello world", exec(t, r, "ucFirst", "hello world"))
	assert.Equal(t, "hi", exec(t, r, "trim", "  hi  "))
	assert.Equal(t, "ell", exec(t, r, "substr", "hello", 1.0, 3.0))
	assert.Equal(t, "hxllo", exec(t, r, "replace", "hello", "e", "x"))
}

func TestBuiltins_UcFirst_OnlyFirstRune(t *testing.T) {
	r := format.NewRegistry()
	// Capitalizes only the first character, not every word.
	assert.Equal(t, "Hello world foo", exec(t, r, "ucFirst", "hello world foo"))
}

func TestBuiltins_Round_HalfUp(t *testing.T) {
	r := format.NewRegistry()
	assert.Equal(t, 2149.99, exec(t, r, "round", 2149.994999, 2.0))
	assert.Equal(t, 1.5, exec(t, r, "round", 1.45, 1.0))
}

func TestBuiltins_Arithmetic(t *testing.T) {
	r := format.NewRegistry()
	assert.Equal(t, 5.0, exec(t, r, "add", 2.0, 3.0))
	assert.Equal(t, -1.0, exec(t, r, "sub", 2.0, 3.0))
	assert.Equal(t, 6.0, exec(t, r, "mul", 2.0, 3.0))
	assert.Equal(t, 2.0, exec(t, r, "div", 6.0, 3.0))
}

func TestBuiltins_DivByZeroIsInfinity(t *testing.T) {
	r := format.NewRegistry()
	v := exec(t, r, "div", 1.0, 0.0)
	assert.True(t, math.IsInf(v.(float64), 1))
}

func TestBuiltins_Comparators(t *testing.T) {
	r := format.NewRegistry()
	assert.Equal(t, true, exec(t, r, "eq", "30", 30.0))
	assert.Equal(t, true, exec(t, r, "gt", 10.0, 5.0))
	assert.Equal(t, false, exec(t, r, "lt", 10.0, 5.0))
}

func TestBuiltins_IfTrueIfEmpty(t *testing.T) {
	r := format.NewRegistry()
	assert.Equal(t, "ON", exec(t, r, "ifTrue", true, "ON", "OFF"))
	assert.Equal(t, "OFF", exec(t, r, "ifTrue", false, "ON", "OFF"))
	assert.Equal(t, "default", exec(t, r, "ifEmpty", "", "default"))
	assert.Equal(t, "present", exec(t, r, "ifEmpty", "present", "default"))
}

func TestBuiltins_Aggregations(t *testing.T) {
	r := format.NewRegistry()
	nums := []float64{10.0, 20.0, 30.0}
	assert.Equal(t, 60.0, exec(t, r, "aggSum", nums))
	assert.Equal(t, 20.0, exec(t, r, "aggAvg", nums))
	assert.Equal(t, 3.0, exec(t, r, "aggCount", nums))
	assert.Equal(t, 10.0, exec(t, r, "aggMin", nums))
	assert.Equal(t, 30.0, exec(t, r, "aggMax", nums))
}

func TestBuiltins_AggregationsOnEmptyArray(t *testing.T) {
	r := format.NewRegistry()
	var nums []float64
	assert.Equal(t, 0.0, exec(t, r, "aggSum", nums))
	assert.Equal(t, 0.0, exec(t, r, "aggAvg", nums))
	assert.Equal(t, 0.0, exec(t, r, "aggCount", nums))
	assert.Equal(t, 0.0, exec(t, r, "aggMin", nums))
	assert.Equal(t, 0.0, exec(t, r, "aggMax", nums))
}

func TestRegistry_DescribeListsAllBuiltins(t *testing.T) {
	r := format.NewRegistry()
	descs := r.Describe()
	names := make(map[string]bool, len(descs))
	for _, d := range descs {
		names[d.Name] = true
	}
	for _, want := range []string{"upperCase", "lowerCase", "ucFirst", "trim", "substr",
		"replace", "round", "add", "sub", "mul", "div", "eq", "ne", "gt", "lt", "gte",
		"lte", "ifTrue", "ifEmpty", "aggSum", "aggAvg", "aggCount", "aggMin", "aggMax"} {
		assert.True(t, names[want], "missing built-in %s", want)
	}
}

func TestRegistry_ValidateChain_UnknownFormatter(t *testing.T) {
	r := format.NewRegistry()
	errs, warnings := r.ValidateChain(callsNamed("doesNotExist"), true)
	assert.Len(t, errs, 1)
	assert.Empty(t, warnings)

	errs, warnings = r.ValidateChain(callsNamed("doesNotExist"), false)
	assert.Empty(t, errs)
	assert.Len(t, warnings, 1)
}

func TestRegistry_ValidateChain_PostAggregationPlacement(t *testing.T) {
	r := format.NewRegistry()

	// round after aggSum is legal; trim after aggSum is not.
	legal := []ast.FormatterCall{{Name: "aggSum"}, {Name: "round"}}
	errs, warnings := r.ValidateChain(legal, true)
	assert.Empty(t, errs)
	assert.Empty(t, warnings)

	illegal := []ast.FormatterCall{{Name: "aggSum"}, {Name: "trim"}}
	errs, _ = r.ValidateChain(illegal, true)
	require.Len(t, errs, 1)

	_, warnings = r.ValidateChain(illegal, false)
	assert.Len(t, warnings, 1)
}

func TestRegistry_ValidateChain_DoubleAggregationFlagged(t *testing.T) {
	r := format.NewRegistry()
	calls := []ast.FormatterCall{{Name: "aggSum"}, {Name: "aggAvg"}}
	errs, _ := r.ValidateChain(calls, true)
	require.Len(t, errs, 1)
}

func callsNamed(name string) []ast.FormatterCall {
	return []ast.FormatterCall{{Name: name}}
}
