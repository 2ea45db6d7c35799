package brs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jptrs93/brsproto/internal/ir"
)

// quote renders s as a BrightScript string literal. The language has no
// escapes: quotes are doubled and control characters are spliced in with
// Chr().
func quote(s string) string {
	var parts []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			parts = append(parts, `"`+run.String()+`"`)
			run.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			run.WriteString(`""`)
		case r < 0x20 || r == 0x7f:
			flush()
			parts = append(parts, fmt.Sprintf("Chr(%d)", r))
		default:
			run.WriteRune(r)
		}
	}
	flush()
	if len(parts) == 0 {
		return `""`
	}
	return strings.Join(parts, " + ")
}

func keyList(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = quote(k)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// number renders a double. Integers in 32-bit range stay plain literals;
// everything else gets the # suffix so it is not narrowed to a Float.
func number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "__pb_nan()"
	case math.IsInf(v, 1):
		return "__pb_infinity()"
	case math.IsInf(v, -1):
		return "-__pb_infinity()"
	case v == 0 && math.Signbit(v):
		return "-0#"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) && math.Abs(v) < 1<<31 {
		return s
	}
	return s + "#"
}

// Literal renders a decoded-model value (nil, bool, string, float64 or a
// list of those) as a BrightScript expression.
func Literal(v any) string {
	return literal(v)
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "invalid"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		return quote(x)
	case float64:
		return number(x)
	case []any:
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = literal(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return quote(fmt.Sprint(x))
	}
}

// enumValues is the name to number table, keyed by upper-cased name.
func enumValues(e *ir.Enum) string {
	byName := e.ValuesByName()
	entries := make([]string, 0, len(byName))
	for _, name := range e.SortedNames() {
		entries = append(entries, fmt.Sprintf("%s: %d", quote(name), byName[name]))
	}
	return table(entries)
}

// enumNames is the number to name table, keyed by decimal number.
func enumNames(e *ir.Enum) string {
	byNumber := e.NamesByNumber()
	entries := make([]string, 0, len(byNumber))
	for _, n := range e.SortedNumbers() {
		key := strconv.FormatInt(int64(n), 10)
		entries = append(entries, fmt.Sprintf("%s: %s", quote(key), quote(byNumber[key])))
	}
	return table(entries)
}

func table(entries []string) string {
	if len(entries) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(entries, ", ") + " }"
}
