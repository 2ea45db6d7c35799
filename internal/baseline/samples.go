package baseline

import (
	"encoding/base64"
	"math"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Sample is one value written into a fixture message, in the decoded
// model's representation: float64 for 32-bit numbers, float and double,
// decimal strings for 64-bit integers, base64 for bytes and value names for
// enums.
type Sample struct {
	Label string
	Value any
}

type labeled struct {
	value string
	label string
}

var varintBoundaries = []labeled{
	{"0", "zero"},
	{"1", "one"},
	{"63", "one-byte-max-minus"},
	{"64", "two-byte-min"},
	{"127", "one-byte-max"},
	{"128", "two-byte-boundary"},
	{"255", "two-byte-mid"},
	{"256", "two-byte-plus-one"},
	{"16383", "two-byte-max"},
	{"16384", "three-byte-boundary"},
	{"2097151", "three-byte-max"},
	{"2097152", "four-byte-boundary"},
}

var (
	int64Extremes = []labeled{
		{"2147483647", "int32-max"},
		{"4294967295", "uint32-max"},
		{"9007199254740991", "safe-max"},
		{"9223372036854775807", "int64-max"},
		{"-1", "neg-one"},
		{"-63", "neg-one-byte-max"},
		{"-64", "neg-two-byte-min"},
		{"-128", "neg-two-byte-boundary"},
		{"-129", "neg-nine-bit"},
		{"-2147483648", "int32-min"},
		{"-9007199254740991", "neg-safe-max"},
		{"-9223372036854775808", "int64-min"},
	}
	uint64Extremes = []labeled{
		{"2147483647", "int32-max"},
		{"2147483648", "int32-max-plus-one"},
		{"4294967295", "uint32-max"},
		{"8589934592", "uint32-double"},
		{"9007199254740991", "safe-max"},
		{"18446744073709551615", "uint64-max"},
	}
)

// Samples returns the values exercised for field. Singular fields get the
// boundary set of their type; repeated fields get one multi-element list.
func Samples(field protoreflect.FieldDescriptor) []Sample {
	if field.IsList() {
		return []Sample{repeatedSample(field)}
	}
	n := int64(field.Number())
	switch field.Kind() {
	case protoreflect.StringKind:
		return []Sample{{"default", "Hello from " + string(field.ContainingMessage().Name())}}
	case protoreflect.BytesKind:
		return []Sample{
			{"empty", ""},
			{"pattern", base64.StdEncoding.EncodeToString([]byte{byte(n), byte(n + 1), byte(n + 2)})},
		}
	case protoreflect.BoolKind:
		return []Sample{{"false", false}, {"true", true}}
	case protoreflect.Int32Kind, protoreflect.Sfixed32Kind:
		return []Sample{
			{"zero", 0.0},
			{"mid", float64(n*100 + 7)},
			{"neg-one", -1.0},
			{"max", 2147483647.0},
			{"min", -2147483648.0},
		}
	case protoreflect.Sint32Kind:
		return []Sample{
			{"zero", 0.0},
			{"mid-pos", float64(n * 50)},
			{"mid-neg", float64(-n * 50)},
			{"max", 2147483647.0},
			{"min", -2147483648.0},
		}
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return []Sample{
			{"zero", 0.0},
			{"mid", float64(n*1000 + 42)},
			{"int32-max-plus-one", 2147483648.0},
			{"uint32-max", 4294967295.0},
		}
	case protoreflect.Int64Kind, protoreflect.Sfixed64Kind:
		return decimalSamples(varintBoundaries, labeled{strconv.FormatInt(n*1000000000+12345, 10), "mid"}, int64Extremes)
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return decimalSamples(varintBoundaries, labeled{strconv.FormatInt(n*500000000+2468, 10), "mid"}, uint64Extremes)
	case protoreflect.Sint64Kind:
		mid := strconv.FormatInt(n*750000000+1357, 10)
		return decimalSamples(varintBoundaries, labeled{mid, "mid-pos"}, append([]labeled{{"-" + mid, "mid-neg"}}, int64Extremes...))
	case protoreflect.FloatKind:
		return []Sample{
			{"zero", 0.0},
			{"neg-zero", math.Copysign(0, -1)},
			{"one", 1.0},
			{"neg-one", -1.0},
			{"pi", float64(float32(3.1415927))},
			{"neg-mid", float64(float32(-123.456))},
			{"large", float64(float32(123456.789))},
			{"min-normal", float64(float32(1.17549435e-38))},
		}
	case protoreflect.DoubleKind:
		return []Sample{
			{"zero", 0.0},
			{"neg-zero", math.Copysign(0, -1)},
			{"one", 1.0},
			{"neg-one", -1.0},
			{"pi", 3.141592653589793},
			{"tiny", 5e-324},
			{"max", 1.7976931348623157e308},
		}
	case protoreflect.EnumKind:
		names := enumNames(field, 2)
		return []Sample{{"first", names[0]}, {"second", names[1]}}
	}
	return nil
}

func repeatedSample(field protoreflect.FieldDescriptor) Sample {
	n := float64(field.Number())
	label := "multi"
	if isPackable(field.Kind()) {
		label = "packed"
	}
	var values []any
	switch field.Kind() {
	case protoreflect.Int32Kind, protoreflect.Sfixed32Kind:
		values = []any{0.0, n * 3, -n * 3}
	case protoreflect.Sint32Kind:
		values = []any{0.0, n * 4, -n * 4}
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		values = []any{0.0, n*10 + 5, 4294967295.0}
	case protoreflect.Int64Kind, protoreflect.Sfixed64Kind:
		values = []any{"0", strconv.FormatFloat(n*100000+7, 'f', -1, 64), "-123456789"}
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		values = []any{"0", "4294967296", "9007199254740991"}
	case protoreflect.Sint64Kind:
		values = []any{"0", "2147483647", "-2147483648"}
	case protoreflect.BoolKind:
		values = []any{false, true, true}
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		values = []any{0.0, 1.25, -2.5}
	case protoreflect.EnumKind:
		for _, name := range enumNames(field, 3) {
			values = append(values, name)
		}
	case protoreflect.StringKind:
		msg := string(field.ContainingMessage().Name())
		values = []any{"Sample-" + msg + "-a", "Sample-" + msg + "-b"}
	case protoreflect.BytesKind:
		values = []any{"", base64.StdEncoding.EncodeToString([]byte{byte(n), byte(n + 1)})}
	}
	return Sample{Label: label, Value: values}
}

// decimalSamples concatenates the groups, dropping repeated values.
func decimalSamples(base []labeled, mid labeled, extremes []labeled) []Sample {
	seen := make(map[string]bool)
	var out []Sample
	for _, group := range [][]labeled{base, {mid}, extremes} {
		for _, entry := range group {
			if seen[entry.value] {
				continue
			}
			seen[entry.value] = true
			out = append(out, Sample{Label: entry.label, Value: entry.value})
		}
	}
	return out
}

// enumNames cycles through the declared value names.
func enumNames(field protoreflect.FieldDescriptor, count int) []string {
	values := field.Enum().Values()
	out := make([]string, count)
	for i := range out {
		out[i] = string(values.Get(i % values.Len()).Name())
	}
	return out
}

func isPackable(kind protoreflect.Kind) bool {
	switch kind {
	case protoreflect.StringKind, protoreflect.BytesKind, protoreflect.MessageKind, protoreflect.GroupKind:
		return false
	}
	return true
}
