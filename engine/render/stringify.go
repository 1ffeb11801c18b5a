package render

import (
	"github.com/dustin/go-humanize"

	"docweave/engine/resolve"
)

// stringify renders a resolved value as final output text: numbers in
// canonical decimal form, booleans as true/false, null/undefined as the
// empty string.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return humanize.Ftoa(t)
	case int:
		return humanize.Ftoa(float64(t))
	default:
		if resolve.IsUndefined(v) {
			return ""
		}
		return resolve.ToStringLoose(v)
	}
}
