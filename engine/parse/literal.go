package parse

import (
	"strconv"
	"strings"

	"docweave/common"
	"docweave/engine/ast"
)

// classifyArg turns one already-trimmed, already-top-level argument token
// into a typed Arg: quoted strings, booleans, and numbers become
// constants, path-prefixed tokens become dynamic, and anything else is a
// bareword string constant.
func classifyArg(tok string) ast.Arg {
	switch {
	case common.IsQuotedString(tok):
		return ast.Arg{Kind: ast.ArgString, Str: common.Unquote(tok)}
	case tok == "true":
		return ast.Arg{Kind: ast.ArgBool, Bool: true}
	case tok == "false":
		return ast.Arg{Kind: ast.ArgBool, Bool: false}
	case isNumericLiteral(tok):
		n, _ := strconv.ParseFloat(tok, 64)
		return ast.Arg{Kind: ast.ArgNumber, Num: n}
	case strings.HasPrefix(tok, ".") || strings.HasPrefix(tok, "d.") || strings.HasPrefix(tok, "c."):
		return ast.Arg{Kind: ast.ArgDynamic}
	default:
		return ast.Arg{Kind: ast.ArgString, Str: tok}
	}
}

// isNumericLiteral reports whether tok is a decimal integer or float,
// with an optional leading sign.
func isNumericLiteral(tok string) bool {
	if tok == "" {
		return false
	}
	i := 0
	if tok[0] == '+' || tok[0] == '-' {
		i++
	}
	if i == len(tok) {
		return false
	}
	sawDigit := false
	sawDot := false
	for ; i < len(tok); i++ {
		switch {
		case tok[i] >= '0' && tok[i] <= '9':
			sawDigit = true
		case tok[i] == '.' && !sawDot:
			sawDot = true
		default:
			return false
		}
	}
	return sawDigit
}

// parseLiteralValue parses a predicate's literal token into a plain Go
// value (string/float64/bool), following the same constant rules as
// formatter arguments.
func parseLiteralValue(tok string) any {
	tok = strings.TrimSpace(tok)
	switch {
	case common.IsQuotedString(tok):
		return common.Unquote(tok)
	case tok == "true":
		return true
	case tok == "false":
		return false
	case isNumericLiteral(tok):
		n, _ := strconv.ParseFloat(tok, 64)
		return n
	default:
		return tok
	}
}
