// Package parse implements the expression parser: it turns one
// tokenizer-located tag body into a typed ast.Tag (kind, path, formatter
// chain).
package parse

import (
	"strings"

	"docweave/engine/ast"
	"docweave/engine/token"
)

// ParseTag parses a single tokenizer span into an ast.Tag.
func ParseTag(span token.Span) (*ast.Tag, error) {
	pos := span.Start
	topLevel := splitTopLevel(span.Body, ':')
	if len(topLevel) == 0 {
		return nil, syntaxErr(pos, "empty tag body")
	}

	head := strings.TrimSpace(topLevel[0])
	if head == "" {
		return nil, syntaxErr(pos, "empty path")
	}

	tag := &ast.Tag{
		ID:    ast.TagID(span.Start, span.Body),
		Start: span.Start,
		End:   span.End,
		Raw:   span.Body,
	}

	switch {
	case strings.HasPrefix(head, "d."):
		tag.Kind = ast.KindData
		p, err := parsePath(ast.ScopeRoot, head[2:], pos)
		if err != nil {
			return nil, err
		}
		tag.Path = p

	case strings.HasPrefix(head, "c."):
		tag.Kind = ast.KindComplement
		p, err := parsePath(ast.ScopeComplement, head[2:], pos)
		if err != nil {
			return nil, err
		}
		tag.Path = p

	case strings.HasPrefix(head, "o."):
		tag.Kind = ast.KindOption
		p, err := parsePath(ast.ScopeOption, head[2:], pos)
		if err != nil {
			return nil, err
		}
		tag.Path = p
		tag.OptionName = p.Raw

	case strings.HasPrefix(head, "t(") && strings.HasSuffix(head, ")"):
		tag.Kind = ast.KindTranslation
		key := strings.TrimSpace(head[2 : len(head)-1])
		if key == "" {
			return nil, syntaxErr(pos, "empty translation key")
		}
		tag.TranslationKey = stripQuotesIfAny(key)

	case strings.HasPrefix(head, "#"):
		tag.Kind = ast.KindAlias
		name := strings.TrimSpace(head[1:])
		if name == "" {
			return nil, syntaxErr(pos, "empty alias name")
		}
		tag.AliasName = name

	default:
		// No prefix defaults to data.
		tag.Kind = ast.KindData
		p, err := parsePath(ast.ScopeRoot, head, pos)
		if err != nil {
			return nil, err
		}
		tag.Path = p
	}

	formatters, err := parseFormatterChain(topLevel[1:], pos)
	if err != nil {
		return nil, err
	}
	tag.Formatters = formatters

	return tag, nil
}

func stripQuotesIfAny(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// ParseTemplate tokenizes raw template bytes and parses every tag span,
// returning tags in byte-position order. Tokenizer failures are rewrapped
// so callers see a single *SyntaxError type for every parse-time failure.
func ParseTemplate(raw string) ([]*ast.Tag, error) {
	spans, err := token.Tokenize(raw)
	if err != nil {
		if te, ok := err.(*token.SyntaxError); ok {
			return nil, &SyntaxError{Pos: te.Pos, Message: te.Message}
		}
		return nil, err
	}
	tags := make([]*ast.Tag, 0, len(spans))
	for _, span := range spans {
		tag, err := ParseTag(span)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
