package resolve

import (
	"strconv"
	"strings"
)

// Numeric coerces v to a float64 when it is numeric or
// numeric-convertible: floats, ints, numeric strings.
func Numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// LooseEquals compares a and b using numeric coercion when both sides are
// numeric-convertible, otherwise falls back to string equality.
func LooseEquals(a, b any) bool {
	if af, aok := Numeric(a); aok {
		if bf, bok := Numeric(b); bok {
			return af == bf
		}
	}
	return ToStringLoose(a) == ToStringLoose(b)
}

// Compare orders a against b numerically when possible; ok is false when
// either side cannot be coerced to a number, in which case relational
// operators evaluate false.
func Compare(a, b any) (cmp int, ok bool) {
	af, aok := Numeric(a)
	bf, bok := Numeric(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}

// ToStringLoose renders any resolved value as a plain string for
// string-operator comparisons (contains/startsWith/endsWith/in).
func ToStringLoose(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case undefinedType:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

// SplitCSV splits a comma-separated "in" operand into trimmed fields.
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
