package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docweave/engine/ast"
	"docweave/engine/parse"
)

func mustParseOne(t *testing.T, raw string) *ast.Tag {
	t.Helper()
	tags, err := parse.ParseTemplate(raw)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	return tags[0]
}

func TestParseTag_DataPath(t *testing.T) {
	tag := mustParseOne(t, "{d.items[].price}")
	assert.Equal(t, ast.KindData, tag.Kind)
	require.NotNil(t, tag.Path)
	assert.Equal(t, ast.ScopeRoot, tag.Path.Scope)
	require.Len(t, tag.Path.Segments, 2)
	assert.Equal(t, "items", tag.Path.Segments[0].Name)
	assert.Equal(t, ast.BracketAggregation, tag.Path.Segments[0].Bracket)
	assert.Equal(t, "price", tag.Path.Segments[1].Name)
}

func TestParseTag_IterationMarker(t *testing.T) {
	tag := mustParseOne(t, "{d.items[i].name}")
	assert.True(t, tag.IsIteration())
	assert.Equal(t, ast.BracketIteration, tag.Path.Segments[0].Bracket)
}

func TestParseTag_IterationOffset(t *testing.T) {
	tag := mustParseOne(t, "{d.items[i+2].name}")
	assert.Equal(t, ast.BracketIterationOffset, tag.Path.Segments[0].Bracket)
	assert.Equal(t, 2, tag.Path.Segments[0].Offset)
}

func TestParseTag_PositionalIndex(t *testing.T) {
	tag := mustParseOne(t, "{d.items[-1].name}")
	assert.Equal(t, ast.BracketIndex, tag.Path.Segments[0].Bracket)
	assert.Equal(t, -1, tag.Path.Segments[0].Index)
}

func TestParseTag_MultipleFilterGroupsAreAnded(t *testing.T) {
	tag := mustParseOne(t, "{d.customers[totalSpent>1000][active=true].name}")
	seg := tag.Path.Segments[0]
	require.Len(t, seg.Predicates, 2)
	assert.Equal(t, "totalSpent", seg.Predicates[0].Property)
	assert.Equal(t, ast.OpGt, seg.Predicates[0].Op)
	assert.Equal(t, "active", seg.Predicates[1].Property)
	assert.Equal(t, ast.OpEq, seg.Predicates[1].Op)
}

func TestParseTag_FormatterChainWithConstantAndDynamicArgs(t *testing.T) {
	tag := mustParseOne(t, `{d.items[].qty:mul(.price):round(2)}`)
	require.Len(t, tag.Formatters, 2)
	assert.Equal(t, "mul", tag.Formatters[0].Name)
	require.Len(t, tag.Formatters[0].Args, 1)
	assert.Equal(t, ast.ArgDynamic, tag.Formatters[0].Args[0].Kind)
	assert.Equal(t, ast.ScopeCurrent, tag.Formatters[0].Args[0].Path.Scope)
	assert.Equal(t, "round", tag.Formatters[1].Name)
	assert.Equal(t, ast.ArgNumber, tag.Formatters[1].Args[0].Kind)
	assert.Equal(t, float64(2), tag.Formatters[1].Args[0].Num)
}

func TestParseTag_StringConstantArgQuotesStripped(t *testing.T) {
	tag := mustParseOne(t, `{d.name:ifEmpty('Anonymous')}`)
	assert.Equal(t, "Anonymous", tag.Formatters[0].Args[0].Str)
}

func TestParseTag_Translation(t *testing.T) {
	tag := mustParseOne(t, "{t(greeting.hello)}")
	assert.Equal(t, ast.KindTranslation, tag.Kind)
	assert.Equal(t, "greeting.hello", tag.TranslationKey)
}

func TestParseTag_Alias(t *testing.T) {
	tag := mustParseOne(t, "{# footer}")
	assert.Equal(t, ast.KindAlias, tag.Kind)
	assert.Equal(t, "footer", tag.AliasName)
}

func TestParseTag_Complement(t *testing.T) {
	tag := mustParseOne(t, "{c.extra.note}")
	assert.Equal(t, ast.KindComplement, tag.Kind)
	assert.Equal(t, ast.ScopeComplement, tag.Path.Scope)
}

func TestParseTag_Option(t *testing.T) {
	tag := mustParseOne(t, "{o.theme}")
	assert.Equal(t, ast.KindOption, tag.Kind)
	assert.Equal(t, ast.ScopeOption, tag.Path.Scope)
}

func TestParseTag_NoPrefixDefaultsToData(t *testing.T) {
	tag := mustParseOne(t, "{name}")
	assert.Equal(t, ast.KindData, tag.Kind)
}

func TestParseTag_EmptyPathIsSyntaxError(t *testing.T) {
	_, err := parse.ParseTemplate("{d.}")
	assert.Error(t, err)
}

func TestParseTag_StableIDAcrossReparse(t *testing.T) {
	tag1 := mustParseOne(t, "{d.name}")
	tag2 := mustParseOne(t, "{d.name}")
	assert.Equal(t, tag1.ID, tag2.ID)
}

func TestParseTag_DifferentPositionDifferentID(t *testing.T) {
	tags, err := parse.ParseTemplate("{d.name} {d.name}")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.NotEqual(t, tags[0].ID, tags[1].ID)
}
