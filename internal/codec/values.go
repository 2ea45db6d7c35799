package codec

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/jptrs93/brsproto/internal/decimal"
	"github.com/jptrs93/brsproto/internal/ir"
)

// toNumber follows the runtime's __pb_toNumber: numbers pass through, booleans
// become 0 or 1, strings are parsed and anything else is zero.
func toNumber(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// toInteger truncates toward zero. NaN and infinities become zero.
func toInteger(v any) float64 {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Trunc(f)
}

// toDecimal renders a value as a signed decimal string. Strings that are not
// integers are parsed as numbers first; anything unusable is "0".
func toDecimal(v any) string {
	switch x := v.(type) {
	case string:
		if negative, magnitude, ok := decimal.ParseSigned(x); ok {
			if negative {
				return "-" + magnitude
			}
			return magnitude
		}
		return decimal.FromSignedFloat(toNumber(x))
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return decimal.FromSignedFloat(toNumber(v))
	}
}

func toBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "true" || s == "1"
	default:
		return toNumber(v) != 0
	}
}

func toBytes(v any) []byte {
	switch x := v.(type) {
	case []byte:
		return x
	case string:
		b, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return nil
		}
		return b
	default:
		return nil
	}
}

func toText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return strconv.FormatFloat(toNumber(x), 'f', -1, 64)
	}
}

// enumNumber resolves a label or number to the wire value. Unknown labels
// fall back to zero.
func enumNumber(e *ir.Enum, v any) float64 {
	if s, ok := v.(string); ok {
		if e != nil {
			if n, ok := e.Lookup(s); ok {
				return float64(n)
			}
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0
		}
	}
	return decimal.ToSigned32(decimal.Wrap32(toInteger(v)))
}

// enumLabel is the decoded form of an enum number.
func enumLabel(e *ir.Enum, n float64) any {
	if e != nil {
		if name, ok := e.Label(int64(n)); ok {
			return name
		}
	}
	return n
}

// DefaultValue is the value a decoder assigns to an absent singular field:
// the declared proto2 default, otherwise the type's zero value.
func DefaultValue(field ir.Field) any {
	if field.HasDefault {
		return parseDefault(field)
	}
	switch field.Kind {
	case ir.KindBool:
		return false
	case ir.KindString, ir.KindBytes:
		return ""
	case ir.KindEnum:
		// proto2 enums without a zero value default to the first value.
		if field.Enum != nil && len(field.Enum.Values) > 0 {
			if name, ok := field.Enum.ZeroName(); ok {
				return name
			}
			return field.Enum.Values[0].Name
		}
		return 0.0
	case ir.KindMessage:
		return nil
	default:
		if field.Kind.Is64Bit() {
			return "0"
		}
		return 0.0
	}
}

func parseDefault(field ir.Field) any {
	raw := field.Default
	switch field.Kind {
	case ir.KindBool:
		return raw == "true"
	case ir.KindString:
		return raw
	case ir.KindBytes:
		return base64.StdEncoding.EncodeToString([]byte(raw))
	case ir.KindEnum:
		if field.Enum != nil {
			if _, ok := field.Enum.Lookup(raw); ok {
				return raw
			}
		}
		return enumLabel(field.Enum, 0)
	case ir.KindFloat, ir.KindDouble:
		switch raw {
		case "inf":
			return math.Inf(1)
		case "-inf":
			return math.Inf(-1)
		case "nan":
			return math.NaN()
		}
		f, _ := strconv.ParseFloat(raw, 64)
		if field.Kind == ir.KindFloat {
			return float64(float32(f))
		}
		return f
	default:
		if field.Kind.Is64Bit() {
			return toDecimal(raw)
		}
		return toNumber(raw)
	}
}
