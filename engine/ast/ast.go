// Package ast holds the typed representation a tag body is parsed into:
// the tag kind, its path (with bracket operators), its formatter chain,
// and the byte span it occupies in the original template.
package ast

// Kind discriminates what a tag's path resolves against.
type Kind int

const (
	KindData Kind = iota
	KindComplement
	KindTranslation
	KindAlias
	KindOption
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindComplement:
		return "complement"
	case KindTranslation:
		return "translation"
	case KindAlias:
		return "alias"
	case KindOption:
		return "option"
	default:
		return "unknown"
	}
}

// BracketKind is the operator carried by a path segment's trailing bracket.
type BracketKind int

const (
	BracketNone BracketKind = iota
	BracketAggregation     // []
	BracketIteration       // [i]
	BracketIterationOffset // [i+N] or [i-N]
	BracketIndex           // [N] or [-N]
	BracketFilter          // [prop=val], possibly repeated/ANDed
)

// Operator is a filter predicate's comparison operator.
type Operator int

const (
	OpEq Operator = iota
	OpNe
	OpGt
	OpLt
	OpGte
	OpLte
	OpContains
	OpStartsWith
	OpEndsWith
	OpIn
)

// Predicate is one (property, operator, literal) triple. Multiple
// predicates on the same segment are ANDed together.
type Predicate struct {
	Property string
	Op       Operator
	Literal  any
}

// Segment is one dot-separated path component plus its optional bracket(s).
// Predicates and Bracket are independent: a segment may carry ANDed filter
// predicates and a trailing aggregation/iteration/index operator at once
// (e.g. "customers[totalSpent>1000][]").
type Segment struct {
	Name    string
	Bracket BracketKind

	// Index holds the resolved value for BracketIndex (may be negative).
	Index int
	// Offset holds the signed delta for BracketIterationOffset.
	Offset int
	// Predicates holds the ANDed filter predicates of every filter bracket
	// group on the segment, whatever Bracket holds; the parser never sets
	// Bracket to BracketFilter.
	Predicates []Predicate
}

// Scope names where a path (or a dynamic formatter argument) is rooted.
type Scope int

const (
	ScopeCurrent Scope = iota // "." prefix: resolves against currentData
	ScopeRoot                 // "d." prefix: resolves against rootData
	ScopeComplement           // "c." prefix: resolves against rootData.complement
	ScopeOption               // "o." prefix: resolves against the render options bag
)

// Path is a sequence of segments rooted at a Scope.
type Path struct {
	Scope    Scope
	Segments []Segment
	// Raw is the original textual form, e.g. "d.items[].price", retained
	// verbatim because aggregation tags need it to derive both the base
	// array path and the post-bracket property path.
	Raw string
}

// HasAggregation reports whether any segment carries the [] aggregation
// marker.
func (p *Path) HasAggregation() bool {
	for _, seg := range p.Segments {
		if seg.Bracket == BracketAggregation {
			return true
		}
	}
	return false
}

// HasIteration reports whether any segment carries [i] or [i±N].
func (p *Path) HasIteration() bool {
	for _, seg := range p.Segments {
		if seg.Bracket == BracketIteration || seg.Bracket == BracketIterationOffset {
			return true
		}
	}
	return false
}

// ArgKind discriminates a formatter argument's constant/dynamic nature.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgNumber
	ArgBool
	ArgDynamic
)

// Arg is a single formatter-call argument.
type Arg struct {
	Kind ArgKind

	// Constant value, valid when Kind is ArgString/ArgNumber/ArgBool.
	Str  string
	Num  float64
	Bool bool

	// Dynamic path, valid when Kind is ArgDynamic.
	Path *Path
}

// FormatterCall is one link ("name" or "name(args...)") in a tag's chain.
type FormatterCall struct {
	Name string
	Args []Arg
}

// Tag is a single parsed {...} occurrence.
type Tag struct {
	// ID is a stable identifier derived from byte position and raw body
	// (see idhash.go); it is independent of map/slice iteration order.
	ID string

	Kind Kind
	Path *Path

	// AliasName holds the body text for KindAlias ("#name").
	AliasName string
	// TranslationKey holds the body text for KindTranslation ("t(KEY)").
	TranslationKey string
	// OptionName holds the path text for KindOption ("o.name").
	OptionName string

	Formatters []FormatterCall

	// Start/End are byte offsets of the full "{...}" span in the
	// original template, End exclusive.
	Start, End int
	// Raw is the literal tag body, the text between the braces.
	Raw string
}

// IsIteration reports whether the tag's path carries an [i] marker and
// therefore must be resolved through line/region expansion.
func (t *Tag) IsIteration() bool {
	return t.Path != nil && t.Path.HasIteration()
}

// IsAggregation reports whether the tag's path carries a [] marker.
func (t *Tag) IsAggregation() bool {
	return t.Path != nil && t.Path.HasAggregation()
}
