package parse

import (
	"strings"

	"docweave/engine/ast"
)

// parseFormatterChain parses the ':'-separated formatter texts that
// follow a tag's path into an ordered FormatterCall chain.
func parseFormatterChain(texts []string, pos int) ([]ast.FormatterCall, error) {
	calls := make([]ast.FormatterCall, 0, len(texts))
	for _, text := range texts {
		call, err := parseFormatterCall(strings.TrimSpace(text), pos)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

// parseFormatterCall parses "NAME" or "NAME(ARGS)".
func parseFormatterCall(text string, pos int) (ast.FormatterCall, error) {
	if text == "" {
		return ast.FormatterCall{}, syntaxErr(pos, "empty formatter in chain")
	}

	open := strings.IndexByte(text, '(')
	if open == -1 {
		if !isIdentifier(text) {
			return ast.FormatterCall{}, syntaxErr(pos, "malformed formatter name %q", text)
		}
		return ast.FormatterCall{Name: text}, nil
	}

	if text[len(text)-1] != ')' {
		return ast.FormatterCall{}, syntaxErr(pos, "unterminated formatter arguments in %q", text)
	}

	name := text[:open]
	if !isIdentifier(name) {
		return ast.FormatterCall{}, syntaxErr(pos, "malformed formatter name %q", name)
	}

	argsText := text[open+1 : len(text)-1]
	if strings.TrimSpace(argsText) == "" {
		return ast.FormatterCall{Name: name}, nil
	}

	argTexts := splitTopLevel(argsText, ',')
	args := make([]ast.Arg, 0, len(argTexts))
	for _, argText := range argTexts {
		argText = strings.TrimSpace(argText)
		if argText == "" {
			return ast.FormatterCall{}, syntaxErr(pos, "empty argument in formatter %q", name)
		}
		arg := classifyArg(argText)
		if arg.Kind == ast.ArgDynamic {
			p, err := parseDynamicArgPath(argText, pos)
			if err != nil {
				return ast.FormatterCall{}, err
			}
			arg.Path = p
		}
		args = append(args, arg)
	}

	return ast.FormatterCall{Name: name, Args: args}, nil
}

// parseDynamicArgPath parses a dynamic formatter argument's path:
// ".rel" resolves against currentData, "d.path" against the data root,
// "c.path" against the complement subtree.
func parseDynamicArgPath(text string, pos int) (*ast.Path, error) {
	switch {
	case strings.HasPrefix(text, "d."):
		return parsePath(ast.ScopeRoot, text[2:], pos)
	case strings.HasPrefix(text, "c."):
		return parsePath(ast.ScopeComplement, text[2:], pos)
	case strings.HasPrefix(text, "."):
		return parsePath(ast.ScopeCurrent, text[1:], pos)
	default:
		return nil, syntaxErr(pos, "malformed dynamic argument %q", text)
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
