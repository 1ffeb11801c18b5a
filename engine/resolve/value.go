// Package resolve walks a parsed path against a data root, applying
// index/filter/iteration/aggregation brackets.
package resolve

import "fmt"

// undefinedType is a distinct sentinel from nil so a resolved JSON null
// and a missing path are never confused; user data may carry explicit
// nulls.
type undefinedType struct{}

func (undefinedType) String() string { return "undefined" }

// Undefined is returned for a path segment that misses a key, indexes out
// of range, or descends into a non-container value.
var Undefined = undefinedType{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedType)
	return ok
}

// IsEmpty reports whether v counts as "empty" for ifEmpty/truthiness-style
// checks: undefined, nil, or the empty string.
func IsEmpty(v any) bool {
	if v == nil || IsUndefined(v) {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// Translator resolves a translation key against a locale, with fallback
// to a default locale. It is defined here, structurally, so resolve does
// not need to import the concrete i18n package; engine/i18n.Dictionary
// satisfies it as-is.
type Translator interface {
	Lookup(locale, key string) (value string, found bool)
}

// Context carries the data scopes a path or dynamic formatter argument
// resolves against during one render.
type Context struct {
	// Root is the original data root ("d." paths resolve here).
	Root any
	// Complement is the optional "c." subtree.
	Complement any
	// Options is the render-options bag ("o." paths resolve here).
	Options any
	// Current is the scope for relative ("." prefixed) paths: the whole
	// root at the top level, or the current array element during
	// iteration/aggregation.
	Current any

	// Locale and Translator back 't(KEY)' translation tags; Translator
	// may be nil, in which case the key itself is used.
	Locale     string
	Translator Translator

	// Aliases backs '#name' alias tags: a flat name -> value table
	// resolved independently of the data root.
	Aliases map[string]any
}

// ResolveTranslation applies the locale -> default-locale -> key fallback
// chain for a translation tag.
func ResolveTranslation(ctx Context, key string) string {
	if ctx.Translator == nil {
		return key
	}
	if v, ok := ctx.Translator.Lookup(ctx.Locale, key); ok {
		return v
	}
	return key
}

// ResolveAlias looks up a '#name' alias tag against ctx.Aliases.
func ResolveAlias(ctx Context, name string) (any, bool) {
	if ctx.Aliases == nil {
		return nil, false
	}
	v, ok := ctx.Aliases[name]
	return v, ok
}

// WithCurrent returns a shallow copy of ctx scoped to a new Current value,
// used when descending into an array element.
func (ctx Context) WithCurrent(v any) Context {
	ctx.Current = v
	return ctx
}

// Error is a tag-level resolution failure: non-fatal, recorded in the
// render report, the tag's output becomes the empty string.
type Error struct {
	TagID   string
	Path    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("TAG_RESOLUTION_ERROR: tag %s path %q: %s", e.TagID, e.Path, e.Message)
}
