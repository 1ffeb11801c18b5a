package parse

import (
	"regexp"
	"strconv"
	"strings"

	"docweave/engine/ast"
)

// predicateRe matches a single "property op literal" predicate. Word
// operators require a surrounding boundary so "containsX" doesn't match.
var predicateRe = regexp.MustCompile(
	`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(==|!=|>=|<=|=|>|<|\bcontains\b|\bstartsWith\b|\bendsWith\b|\bin\b)\s*(.+?)\s*$`,
)

var operatorTable = map[string]ast.Operator{
	"=":          ast.OpEq,
	"==":         ast.OpEq,
	"!=":         ast.OpNe,
	">":          ast.OpGt,
	"<":          ast.OpLt,
	">=":         ast.OpGte,
	"<=":         ast.OpLte,
	"contains":   ast.OpContains,
	"startsWith": ast.OpStartsWith,
	"endsWith":   ast.OpEndsWith,
	"in":         ast.OpIn,
}

// parsePath parses the text following a tag's kind prefix (e.g.
// "items[].price" or "customers[totalSpent>1000][active=true].name")
// into a Path rooted at the given scope.
func parsePath(scope ast.Scope, raw string, pos int) (*ast.Path, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, syntaxErr(pos, "empty path")
	}

	segTexts := splitTopLevel(raw, '.')
	segments := make([]ast.Segment, 0, len(segTexts))
	for _, segText := range segTexts {
		seg, err := parseSegment(segText, pos)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	return &ast.Path{Scope: scope, Segments: segments, Raw: raw}, nil
}

// parseSegment splits "name[group1][group2]..." into a property name and
// its bracket groups, then classifies each group independently: filter
// groups accumulate as ANDed predicates, and at most one group may carry
// a non-filter operator (aggregation/iteration/index), as in
// "customers[totalSpent>1000][]", a filter followed by an aggregation
// marker on the same array.
func parseSegment(segText string, pos int) (ast.Segment, error) {
	name, groups, err := splitBracketGroups(segText, pos)
	if err != nil {
		return ast.Segment{}, err
	}
	if name == "" {
		return ast.Segment{}, syntaxErr(pos, "empty path segment")
	}

	seg := ast.Segment{Name: name}
	for _, g := range groups {
		kind, _ := classifyBracket(g)
		if kind == ast.BracketFilter {
			preds, err := parsePredicateGroup(g, pos)
			if err != nil {
				return ast.Segment{}, err
			}
			seg.Predicates = append(seg.Predicates, preds...)
			continue
		}
		if seg.Bracket != ast.BracketNone {
			return ast.Segment{}, syntaxErr(pos, "segment %q carries more than one aggregation/iteration/index bracket", segText)
		}
		seg, err = applyBracket(seg, kind, g, pos)
		if err != nil {
			return ast.Segment{}, err
		}
	}
	return seg, nil
}

// classifyBracket identifies which single-bracket kind a group's content
// represents, without fully parsing it (used to decide filter-vs-not for
// each bracket group of a segment).
func classifyBracket(content string) (ast.BracketKind, bool) {
	switch {
	case content == "":
		return ast.BracketAggregation, true
	case content == "i":
		return ast.BracketIteration, true
	case isIterationOffset(content):
		return ast.BracketIterationOffset, true
	case isSignedInt(content):
		return ast.BracketIndex, true
	default:
		return ast.BracketFilter, true
	}
}

func applyBracket(seg ast.Segment, kind ast.BracketKind, content string, pos int) (ast.Segment, error) {
	seg.Bracket = kind
	switch kind {
	case ast.BracketAggregation, ast.BracketIteration:
		// nothing further to parse
	case ast.BracketIterationOffset:
		offset, err := strconv.Atoi(strings.TrimPrefix(content, "i"))
		if err != nil {
			return ast.Segment{}, syntaxErr(pos, "malformed iteration offset %q", content)
		}
		seg.Offset = offset
	case ast.BracketIndex:
		n, err := strconv.Atoi(content)
		if err != nil {
			return ast.Segment{}, syntaxErr(pos, "malformed index %q", content)
		}
		seg.Index = n
	}
	return seg, nil
}

func isIterationOffset(s string) bool {
	if len(s) < 3 || s[0] != 'i' {
		return false
	}
	if s[1] != '+' && s[1] != '-' {
		return false
	}
	return isDigits(s[2:])
}

func isSignedInt(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	return i < len(s) && isDigits(s[i:])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// parsePredicateGroup splits one bracket's content on the literal " and "
// keyword and parses each side as a predicate.
func parsePredicateGroup(content string, pos int) ([]ast.Predicate, error) {
	clauses := splitAnd(content)
	preds := make([]ast.Predicate, 0, len(clauses))
	for _, clause := range clauses {
		m := predicateRe.FindStringSubmatch(clause)
		if m == nil {
			return nil, syntaxErr(pos, "malformed filter predicate %q", clause)
		}
		op, ok := operatorTable[m[2]]
		if !ok {
			return nil, syntaxErr(pos, "unknown filter operator %q", m[2])
		}
		preds = append(preds, ast.Predicate{
			Property: m[1],
			Op:       op,
			Literal:  parseLiteralValue(m[3]),
		})
	}
	return preds, nil
}

// splitAnd splits on the literal " and " keyword, respecting quotes.
func splitAnd(s string) []string {
	const kw = " and "
	var parts []string
	inQuote := byte(0)
	escaped := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == inQuote:
				inQuote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			inQuote = c
		default:
			if c == ' ' && strings.HasPrefix(s[i:], kw) {
				parts = append(parts, s[start:i])
				i += len(kw) - 1
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// splitBracketGroups splits "name[g1][g2]" into ("name", ["g1","g2"]),
// honoring quotes inside each group so a filter literal may contain ']'.
func splitBracketGroups(s string, pos int) (name string, groups []string, err error) {
	i := 0
	for i < len(s) && s[i] != '[' {
		i++
	}
	name = s[:i]

	for i < len(s) {
		if s[i] != '[' {
			return "", nil, syntaxErr(pos, "malformed bracket in segment %q", s)
		}
		i++
		groupStart := i
		inQuote := byte(0)
		escaped := false
		closed := false
		for ; i < len(s); i++ {
			c := s[i]
			if inQuote != 0 {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == inQuote:
					inQuote = 0
				}
				continue
			}
			switch c {
			case '\'', '"':
				inQuote = c
			case ']':
				closed = true
			}
			if closed {
				break
			}
		}
		if !closed {
			return "", nil, syntaxErr(pos, "unterminated bracket in segment %q", s)
		}
		groups = append(groups, s[groupStart:i])
		i++ // past ']'
	}
	return name, groups, nil
}
