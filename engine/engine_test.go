package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docweave/engine"
)

// Scalar resolution through a single formatter.
func TestRender_ScalarChain(t *testing.T) {
	out, _, err := engine.RenderString(`Hello {d.name:upperCase}!`, engine.Options{
		Data: map[string]any{"name": "world"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello WORLD!", out)
}

// Line-per-element iteration.
func TestRender_Iteration(t *testing.T) {
	out, _, err := engine.RenderString(`{d.items[i].name} x {d.items[i].qty}`, engine.Options{
		Data: map[string]any{"items": []any{
			map[string]any{"name": "A", "qty": 2.0},
			map[string]any{"name": "B", "qty": 3.0},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "A x 2\nB x 3", out)
}

// Aggregation with a per-element cross-referencing dynamic formatter
// argument: mul(.price) reads each element's own price before aggSum.
func TestRender_AggregationWithCrossReference(t *testing.T) {
	out, _, err := engine.RenderString(`Total: {d.items[].qty:mul(.price):aggSum():round(2)}`, engine.Options{
		Data: map[string]any{"items": []any{
			map[string]any{"qty": 10.0, "price": 125.0},
			map[string]any{"qty": 1.0, "price": 299.99},
			map[string]any{"qty": 12.0, "price": 50.0},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Total: 2149.99", out)
}

// Filter then aggCount.
func TestRender_FilterThenAggregate(t *testing.T) {
	out, _, err := engine.RenderString(`VIPs: {d.customers[totalSpent>1000][].name:aggCount()}`, engine.Options{
		Data: map[string]any{"customers": []any{
			map[string]any{"name": "A", "totalSpent": 2500.0},
			map[string]any{"name": "B", "totalSpent": 750.0},
			map[string]any{"name": "C", "totalSpent": 1200.0},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "VIPs: 2", out)
}

// An empty array's iteration line is deleted entirely.
func TestRender_EmptyArrayDeletesLine(t *testing.T) {
	out, _, err := engine.RenderString("Items:\n{d.items[i].name}\nDone.", engine.Options{
		Data: map[string]any{"items": []any{}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Items:\nDone.", out)
}

// Conditional chain (eq then ifTrue).
func TestRender_ConditionalChain(t *testing.T) {
	tpl := `{d.status:eq('active'):ifTrue('ON','OFF')}`

	out, _, err := engine.RenderString(tpl, engine.Options{Data: map[string]any{"status": "active"}})
	require.NoError(t, err)
	assert.Equal(t, "ON", out)

	out, _, err = engine.RenderString(tpl, engine.Options{Data: map[string]any{"status": "idle"}})
	require.NoError(t, err)
	assert.Equal(t, "OFF", out)
}

// Invariant: a template with no tags round-trips byte-for-byte.
func TestRender_NoTagsIsIdentity(t *testing.T) {
	const raw = "Plain text with no tags at all.\nSecond line."
	out, _, err := engine.RenderString(raw, engine.Options{Data: map[string]any{"anything": 1}})
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

// Invariant: two renders of identical inputs yield identical bytes.
func TestRender_Deterministic(t *testing.T) {
	tpl := `{d.items[].price:aggAvg():round(2)}`
	data := map[string]any{"items": []any{
		map[string]any{"price": 10.0},
		map[string]any{"price": 20.5},
	}}
	out1, _, err := engine.RenderString(tpl, engine.Options{Data: data})
	require.NoError(t, err)
	out2, _, err := engine.RenderString(tpl, engine.Options{Data: data})
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}

// A missing scalar path substitutes empty string and is recorded as a
// TAG_RESOLUTION_ERROR in the report.
func TestRender_MissingPathReportsResolutionError(t *testing.T) {
	out, report, err := engine.RenderString(`Name: {d.missing.path}`, engine.Options{
		Data: map[string]any{"name": "present"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name: ", out)
	require.Len(t, report.TagStatus, 1)
	assert.False(t, report.TagStatus[0].OK)
}

// Single-element arrays preserve their line exactly once.
func TestRender_SingleElementIterationPreservesLine(t *testing.T) {
	out, _, err := engine.RenderString(`{d.items[i].name}`, engine.Options{
		Data: map[string]any{"items": []any{map[string]any{"name": "Solo"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Solo", out)
}

// A relative iteration offset reaches a sibling row.
func TestRender_IterationOffset(t *testing.T) {
	out, _, err := engine.RenderString(`{d.items[i].name}:{d.items[i+1].name}`, engine.Options{
		Data: map[string]any{"items": []any{
			map[string]any{"name": "A"},
			map[string]any{"name": "B"},
			map[string]any{"name": "C"},
		}},
	})
	require.NoError(t, err)
	// Row 2 (k=2) has no i+1 neighbor; its offset read is out of range and
	// reported, substituting empty string for that occurrence.
	assert.Equal(t, "A:B\nB:C\nC:", out)
}

// A translation tag falls back to its own key when no dictionary is wired.
func TestRender_TranslationFallsBackToKey(t *testing.T) {
	out, _, err := engine.RenderString(`{t(greeting.hello)}`, engine.Options{})
	require.NoError(t, err)
	assert.Equal(t, "greeting.hello", out)
}

// A translation tag resolves through a wired Translator.
func TestRender_TranslationResolves(t *testing.T) {
	dict := fakeTranslator{"en": {"greeting.hello": "Hello!"}}
	out, _, err := engine.RenderString(`{t(greeting.hello)}`, engine.Options{
		Locale: "en", Translator: dict,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", out)
}

// An alias tag resolves against the render's Aliases table.
func TestRender_AliasResolves(t *testing.T) {
	out, _, err := engine.RenderString(`{# companyName}`, engine.Options{
		Aliases: map[string]any{"companyName": "Acme Corp"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", out)
}

// An option-scoped tag resolves against the Option bag, independent of
// the data root.
func TestRender_OptionScopedTag(t *testing.T) {
	out, _, err := engine.RenderString(`{o.theme}`, engine.Options{
		Data:   map[string]any{"theme": "should not be used"},
		Option: map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", out)
}

// A syntax error (unbalanced parentheses) is fatal at parse time.
func TestParseTemplate_SyntaxError(t *testing.T) {
	_, err := engine.ParseTemplate(`{d.name:replace('a','b'}`)
	require.Error(t, err)
}

// A circular dependency across dynamic formatter arguments is fatal.
func TestParseTemplate_CircularDependency(t *testing.T) {
	_, err := engine.ParseTemplate(`{d.a:add(d.b)} {d.b:add(d.a)}`)
	require.Error(t, err)
}

// Strict mode makes an unknown formatter fatal before any substitution;
// lenient mode skips it with a warning and renders the value untouched.
func TestRender_StrictModeUnknownFormatter(t *testing.T) {
	tpl := `{d.name:noSuchFormatter}`
	data := map[string]any{"name": "Ada"}

	_, _, err := engine.RenderString(tpl, engine.Options{Data: data, Strict: true})
	require.Error(t, err)

	out, report, err := engine.RenderString(tpl, engine.Options{Data: data})
	require.NoError(t, err)
	assert.Equal(t, "Ada", out)
	assert.NotEmpty(t, report.Warnings)
}

// A string-only formatter after an aggregation is a placement violation:
// fatal in strict mode, a warning otherwise.
func TestRender_PostAggregationPlacement(t *testing.T) {
	tpl := `{d.items[].qty:aggSum():substr(0,1)}`
	data := map[string]any{"items": []any{map[string]any{"qty": 12.0}}}

	_, _, err := engine.RenderString(tpl, engine.Options{Data: data, Strict: true})
	require.Error(t, err)

	_, report, err := engine.RenderString(tpl, engine.Options{Data: data})
	require.NoError(t, err)
	assert.NotEmpty(t, report.Warnings)
}

// Iteration expansion is recorded in the report as an expansion plan:
// array length plus the per-row substituted values, keyed by tag id.
func TestRender_ExpansionPlanInReport(t *testing.T) {
	pt, err := engine.ParseTemplate(`{d.items[i].name}`)
	require.NoError(t, err)

	_, report, err := engine.Render(pt, engine.Options{
		Data: map[string]any{"items": []any{
			map[string]any{"name": "A"},
			map[string]any{"name": "B"},
		}},
	})
	require.NoError(t, err)
	require.Len(t, report.Expansions, 1)
	plan := report.Expansions[0]
	assert.Equal(t, pt.Tags[0].ID, plan.TagID)
	assert.Equal(t, 2, plan.Length)
	require.Len(t, plan.Rows, 2)
	assert.Equal(t, "A", plan.Rows[0][plan.TagID])
	assert.Equal(t, "B", plan.Rows[1][plan.TagID])
}

// A canceled context aborts the render without partial output.
func TestRenderContext_Canceled(t *testing.T) {
	pt, err := engine.ParseTemplate(`{d.name}`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, _, err := engine.RenderContext(ctx, pt, engine.Options{Data: map[string]any{"name": "Ada"}})
	require.Error(t, err)
	assert.Empty(t, out)
}

// Parse-time failures surface as the facade's typed errors.
func TestParseTemplate_TypedErrors(t *testing.T) {
	_, err := engine.ParseTemplate(`{d.name`)
	var syntaxErr *engine.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)

	_, err = engine.ParseTemplate(`{d.a:add(d.b)} {d.b:add(d.a)}`)
	var cycleErr *engine.CircularDependencyError
	require.ErrorAs(t, err, &cycleErr)
}

type fakeTranslator map[string]map[string]string

func (f fakeTranslator) Lookup(locale, key string) (string, bool) {
	v, ok := f[locale][key]
	return v, ok
}
