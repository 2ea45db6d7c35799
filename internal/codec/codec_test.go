package codec

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/jptrs93/brsproto/internal/ir"
	"github.com/jptrs93/brsproto/internal/parser/parsertest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

var scalarTypes = []string{
	"int32", "uint32", "sint32", "int64", "uint64", "sint64",
	"fixed32", "sfixed32", "fixed64", "sfixed64",
	"float", "double", "bool", "string", "bytes",
}

type sample struct {
	in  any
	ref protoreflect.Value
	out any
}

func int32Samples(of func(int32) protoreflect.Value) []sample {
	var out []sample
	for _, v := range []int32{0, 1, -1, 127, 128, -128, 16383, 16384, 2097152, 268435456, math.MaxInt32, math.MinInt32} {
		out = append(out, sample{float64(v), of(v), float64(v)})
	}
	return out
}

func uint32Samples() []sample {
	var out []sample
	for _, v := range []uint32{0, 1, 127, 128, 300, 16384, 2147483648, math.MaxUint32} {
		out = append(out, sample{float64(v), protoreflect.ValueOfUint32(v), float64(v)})
	}
	return out
}

func int64Samples() []sample {
	var out []sample
	for _, v := range []int64{0, 1, -1, 300, 4294967296, -4294967296, 1 << 53, math.MaxInt64, math.MinInt64} {
		s := fmt.Sprint(v)
		out = append(out, sample{s, protoreflect.ValueOfInt64(v), s})
	}
	return out
}

func uint64Samples() []sample {
	var out []sample
	for _, v := range []uint64{0, 1, 128, 4294967295, 4294967296, 1<<53 + 1, math.MaxInt64 + 1, math.MaxUint64} {
		s := fmt.Sprint(v)
		out = append(out, sample{s, protoreflect.ValueOfUint64(v), s})
	}
	return out
}

func samplesFor(typ string) []sample {
	switch typ {
	case "int32", "sint32", "sfixed32":
		return int32Samples(protoreflect.ValueOfInt32)
	case "uint32", "fixed32":
		return uint32Samples()
	case "int64", "sint64", "sfixed64":
		return int64Samples()
	case "uint64", "fixed64":
		return uint64Samples()
	case "float":
		var out []sample
		for _, v := range []float64{0, 1.5, -2.25, 0.1, 3.1415927, math.MaxFloat32, 1e-45, -1e-40, 16777217} {
			f := float32(v)
			out = append(out, sample{v, protoreflect.ValueOfFloat32(f), float64(f)})
		}
		return out
	case "double":
		var out []sample
		for _, v := range []float64{0, 0.1, -1e300, math.MaxFloat64, math.SmallestNonzeroFloat64, 123456.789, math.Inf(1)} {
			out = append(out, sample{v, protoreflect.ValueOfFloat64(v), v})
		}
		return out
	case "bool":
		return []sample{
			{false, protoreflect.ValueOfBool(false), false},
			{true, protoreflect.ValueOfBool(true), true},
		}
	case "string":
		var out []sample
		for _, v := range []string{"", "hello", "héllo ✓", strings.Repeat("x", 200)} {
			out = append(out, sample{v, protoreflect.ValueOfString(v), v})
		}
		return out
	case "bytes":
		var out []sample
		for _, v := range [][]byte{{}, {0, 1, 255}, []byte(strings.Repeat("\xfe", 130))} {
			s := base64.StdEncoding.EncodeToString(v)
			out = append(out, sample{s, protoreflect.ValueOfBytes(v), s})
		}
		return out
	}
	panic(typ)
}

func scalarsProto(syntax string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "syntax = %q;\npackage scalars;\nmessage All {\n", syntax)
	label := ""
	if syntax == "proto2" {
		label = "optional "
	}
	for i, typ := range scalarTypes {
		fmt.Fprintf(&b, "  %s%s %s_value = %d;\n", label, typ, typ, i+1)
		fmt.Fprintf(&b, "  repeated %s %s_list = %d;\n", typ, typ, 100+i+1)
		if typ != "string" && typ != "bytes" {
			fmt.Fprintf(&b, "  repeated %s %s_unpacked = %d [packed = false];\n", typ, typ, 200+i+1)
			fmt.Fprintf(&b, "  repeated %s %s_packed = %d [packed = true];\n", typ, typ, 300+i+1)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

type fixture struct {
	codec *Codec
	md    protoreflect.MessageDescriptor
}

func newFixture(t *testing.T, syntax string, options Options) fixture {
	fds, files := parsertest.Compile(t, map[string]string{"scalars.proto": scalarsProto(syntax)})
	c, err := New(files, options)
	require.NoError(t, err)
	return fixture{codec: c, md: parsertest.Message(t, fds, "scalars.All")}
}

func marshal(t *testing.T, m proto.Message) []byte {
	t.Helper()
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
	require.NoError(t, err)
	return b
}

func (f fixture) reference(t *testing.T, set func(m *dynamicpb.Message)) []byte {
	m := dynamicpb.NewMessage(f.md)
	set(m)
	return marshal(t, m)
}

func (f fixture) encode(t *testing.T, msg map[string]any) []byte {
	t.Helper()
	b, err := f.codec.EncodeBytes("scalars.All", msg)
	require.NoError(t, err)
	return b
}

func (f fixture) decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	m, err := f.codec.DecodeBytes("scalars.All", b)
	require.NoError(t, err)
	return m
}

func TestSingularMatchesReference(t *testing.T) {
	for _, syntax := range []string{"proto3", "proto2"} {
		f := newFixture(t, syntax, Options{DecodeCase: ir.CaseSnake})
		for _, typ := range scalarTypes {
			name := typ + "_value"
			fd := f.md.Fields().ByName(protoreflect.Name(name))
			for _, s := range samplesFor(typ) {
				want := f.reference(t, func(m *dynamicpb.Message) { m.Set(fd, s.ref) })
				got := f.encode(t, map[string]any{name: s.in})
				require.Equal(t, want, got, "%s %s %v", syntax, typ, s.in)

				decoded := f.decode(t, got)
				if len(want) == 0 {
					require.Empty(t, decoded, "%s %v", typ, s.in)
					continue
				}
				require.Equal(t, map[string]any{name: s.out}, decoded, "%s %s %v", syntax, typ, s.in)
			}
		}
	}
}

func TestRepeatedMatchesReference(t *testing.T) {
	for _, syntax := range []string{"proto3", "proto2"} {
		f := newFixture(t, syntax, Options{DecodeCase: ir.CaseSnake})
		for _, typ := range scalarTypes {
			suffixes := []string{"_list", "_unpacked", "_packed"}
			if typ == "string" || typ == "bytes" {
				suffixes = suffixes[:1]
			}
			samples := samplesFor(typ)
			for _, suffix := range suffixes {
				name := typ + suffix
				fd := f.md.Fields().ByName(protoreflect.Name(name))
				want := f.reference(t, func(m *dynamicpb.Message) {
					list := m.Mutable(fd).List()
					for _, s := range samples {
						list.Append(s.ref)
					}
				})
				var in, out []any
				for _, s := range samples {
					in = append(in, s.in)
					out = append(out, s.out)
				}
				got := f.encode(t, map[string]any{name: in})
				require.Equal(t, want, got, "%s %s", syntax, name)
				require.Equal(t, map[string]any{name: out}, f.decode(t, got), "%s %s", syntax, name)
			}
		}
	}
}

func TestPackedDefaults(t *testing.T) {
	f3 := newFixture(t, "proto3", Options{})
	f2 := newFixture(t, "proto2", Options{})
	in := map[string]any{"int32_list": []any{1.0, 2.0}}

	// proto3 packs by default: one length-delimited record.
	require.Equal(t, []byte{0xaa, 0x06, 0x02, 0x01, 0x02}, f3.encode(t, in))
	// proto2 writes a tag per element.
	require.Equal(t, []byte{0xa8, 0x06, 0x01, 0xa8, 0x06, 0x02}, f2.encode(t, in))
}

func TestDecodeAcceptsBothRepeatedForms(t *testing.T) {
	f := newFixture(t, "proto3", Options{DecodeCase: ir.CaseSnake})
	packed := f.encode(t, map[string]any{"sint64_packed": []any{"-1", "5"}})
	unpacked := f.encode(t, map[string]any{"sint64_unpacked": []any{"-1", "5"}})

	// Re-tag each record with the other field's number.
	repack := func(b []byte, from, to protowire.Number) []byte {
		var out []byte
		for len(b) > 0 {
			num, typ, n := protowire.ConsumeTag(b)
			require.Greater(t, n, 0)
			b = b[n:]
			m := protowire.ConsumeFieldValue(num, typ, b)
			require.Greater(t, m, 0)
			require.Equal(t, from, num)
			out = protowire.AppendTag(out, to, typ)
			out = append(out, b[:m]...)
			b = b[m:]
		}
		return out
	}
	want := []any{"-1", "5"}
	require.Equal(t, map[string]any{"sint64_unpacked": want}, f.decode(t, repack(packed, 306, 206)))
	require.Equal(t, map[string]any{"sint64_packed": want}, f.decode(t, repack(unpacked, 206, 306)))
}

func TestUint32MaxScenario(t *testing.T) {
	f := newFixture(t, "proto3", Options{DecodeCase: ir.CaseSnake})
	got := f.encode(t, map[string]any{"uint32_value": 4294967295.0})
	require.Equal(t, []byte{0x10, 0xff, 0xff, 0xff, 0xff, 0x0f}, got)
	require.Equal(t, map[string]any{"uint32_value": 4294967295.0}, f.decode(t, got))
}

func TestSint64MinusOneScenario(t *testing.T) {
	f := newFixture(t, "proto3", Options{DecodeCase: ir.CaseSnake})
	got := f.encode(t, map[string]any{"sint64_value": "-1"})
	require.Equal(t, []byte{0x30, 0x01}, got)
	require.Equal(t, map[string]any{"sint64_value": "-1"}, f.decode(t, got))
}

func TestLenientInputs(t *testing.T) {
	f := newFixture(t, "proto3", Options{DecodeCase: ir.CaseSnake})
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{"int32 from string", map[string]any{"int32_value": "-5"}, map[string]any{"int32_value": -5.0}},
		{"int32 truncates", map[string]any{"int32_value": 7.9}, map[string]any{"int32_value": 7.0}},
		{"int32 wraps", map[string]any{"int32_value": 4294967295.0}, map[string]any{"int32_value": -1.0}},
		{"uint32 negative wraps", map[string]any{"uint32_value": -1.0}, map[string]any{"uint32_value": 4294967295.0}},
		{"int64 from number", map[string]any{"int64_value": -42.0}, map[string]any{"int64_value": "-42"}},
		{"int64 from int", map[string]any{"int64_value": int64(math.MinInt64)}, map[string]any{"int64_value": "-9223372036854775808"}},
		{"uint64 negative wraps", map[string]any{"uint64_value": "-1"}, map[string]any{"uint64_value": "18446744073709551615"}},
		{"uint64 from bool", map[string]any{"uint64_value": true}, map[string]any{"uint64_value": "1"}},
		{"bool from string", map[string]any{"bool_value": "TRUE"}, map[string]any{"bool_value": true}},
		{"bool from number", map[string]any{"bool_value": 2.0}, map[string]any{"bool_value": true}},
		{"double from string", map[string]any{"double_value": "2.5"}, map[string]any{"double_value": 2.5}},
		{"string from number", map[string]any{"string_value": 12.0}, map[string]any{"string_value": "12"}},
		{"raw bytes", map[string]any{"bytes_value": []byte("hi")}, map[string]any{"bytes_value": "aGk="}},
		{"garbage decimal is zero", map[string]any{"int64_value": "12abc"}, map[string]any{}},
		{"overflowing uint64 is zero", map[string]any{"uint64_value": "18446744073709551616"}, map[string]any{}},
		{"bad base64 is empty", map[string]any{"bytes_value": "!!"}, map[string]any{}},
		{"nil is absent", map[string]any{"int32_value": nil}, map[string]any{}},
		{"non-list repeated is skipped", map[string]any{"int32_list": 3.0}, map[string]any{}},
		{"empty list is skipped", map[string]any{"int32_list": []any{}}, map[string]any{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, f.decode(t, f.encode(t, tc.in)))
		})
	}
}

func TestNegativeZeroMatchesReference(t *testing.T) {
	negZero := math.Copysign(0, -1)
	for _, syntax := range []string{"proto3", "proto2"} {
		f := newFixture(t, syntax, Options{DecodeCase: ir.CaseSnake})
		for _, name := range []string{"float_value", "double_value"} {
			fd := f.md.Fields().ByName(protoreflect.Name(name))
			want := f.reference(t, func(m *dynamicpb.Message) {
				if fd.Kind() == protoreflect.FloatKind {
					m.Set(fd, protoreflect.ValueOfFloat32(float32(negZero)))
				} else {
					m.Set(fd, protoreflect.ValueOfFloat64(negZero))
				}
			})
			got := f.encode(t, map[string]any{name: negZero})
			require.Equal(t, want, got, "%s %s", syntax, name)
			require.NotEmpty(t, got, "%s %s", syntax, name)
			require.True(t, math.Signbit(f.decode(t, got)[name].(float64)), "%s %s", syntax, name)
		}

		fd := f.md.Fields().ByName("double_list")
		want := f.reference(t, func(m *dynamicpb.Message) {
			list := m.Mutable(fd).List()
			list.Append(protoreflect.ValueOfFloat64(negZero))
			list.Append(protoreflect.ValueOfFloat64(0))
		})
		got := f.encode(t, map[string]any{"double_list": []any{negZero, 0.0}})
		require.Equal(t, want, got, syntax)
		decoded := f.decode(t, got)["double_list"].([]any)
		require.True(t, math.Signbit(decoded[0].(float64)))
		require.False(t, math.Signbit(decoded[1].(float64)))
	}

	// Positive zero still counts as unset under implicit presence.
	f := newFixture(t, "proto3", Options{DecodeCase: ir.CaseSnake})
	require.Empty(t, f.encode(t, map[string]any{"double_value": 0.0, "float_value": "0"}))
	require.Equal(t, []byte{0x61, 0, 0, 0, 0, 0, 0, 0, 0x80}, f.encode(t, map[string]any{"double_value": "-0"}))
}

const mediaProto = `
syntax = "proto3";
package media;

enum Quality {
  QUALITY_UNSPECIFIED = 0;
  QUALITY_HD = 1;
  QUALITY_UHD = 2;
}

message Stream {
  string url = 1;
  int64 bitrate = 2;
}

message Video {
  string video_id = 1 [json_name = "vid"];
  Quality quality = 2;
  repeated Quality fallbacks = 3;
  Stream primary = 4;
  repeated Stream alternates = 5;
  optional int32 rating = 6;
}

message VideoV1 {
  string video_id = 1;
}
`

const legacyProto = `
syntax = "proto2";
package legacy;

enum Mode {
  MODE_A = 1;
  MODE_B = 2;
}

message Settings {
  optional Mode mode = 1;
  optional int32 level = 2 [default = -7];
  optional string label = 3 [default = "none"];
  optional bool enabled = 4;
  optional bytes blob = 5 [default = "ab"];
}
`

type mediaFixture struct {
	codec *Codec
	fds   []protoreflect.FileDescriptor
}

func newMediaFixture(t *testing.T, options Options) mediaFixture {
	fds, files := parsertest.Compile(t, map[string]string{"media.proto": mediaProto, "legacy.proto": legacyProto})
	c, err := New(files, options)
	require.NoError(t, err)
	return mediaFixture{codec: c, fds: fds}
}

func (f mediaFixture) encode(t *testing.T, name string, msg map[string]any) []byte {
	t.Helper()
	b, err := f.codec.EncodeBytes(name, msg)
	require.NoError(t, err)
	return b
}

func (f mediaFixture) decode(t *testing.T, name string, b []byte) map[string]any {
	t.Helper()
	m, err := f.codec.DecodeBytes(name, b)
	require.NoError(t, err)
	return m
}

func TestNestedMessagesMatchReference(t *testing.T) {
	f := newMediaFixture(t, Options{DecodeCase: ir.CaseSnake})
	video := parsertest.Message(t, f.fds, "media.Video")
	stream := parsertest.Message(t, f.fds, "media.Stream")

	ref := dynamicpb.NewMessage(video)
	ref.Set(video.Fields().ByName("video_id"), protoreflect.ValueOfString("abc"))
	ref.Set(video.Fields().ByName("quality"), protoreflect.ValueOfEnum(2))
	fallbacks := ref.Mutable(video.Fields().ByName("fallbacks")).List()
	fallbacks.Append(protoreflect.ValueOfEnum(1))
	fallbacks.Append(protoreflect.ValueOfEnum(0))
	primary := dynamicpb.NewMessage(stream)
	primary.Set(stream.Fields().ByName("url"), protoreflect.ValueOfString("https://a"))
	primary.Set(stream.Fields().ByName("bitrate"), protoreflect.ValueOfInt64(-3))
	ref.Set(video.Fields().ByName("primary"), protoreflect.ValueOfMessage(primary))
	alternates := ref.Mutable(video.Fields().ByName("alternates")).List()
	alt := dynamicpb.NewMessage(stream)
	alt.Set(stream.Fields().ByName("url"), protoreflect.ValueOfString("https://b"))
	alternates.Append(protoreflect.ValueOfMessage(alt))
	alternates.Append(protoreflect.ValueOfMessage(dynamicpb.NewMessage(stream)))
	want := marshal(t, ref)

	in := map[string]any{
		"vid":       "abc",
		"quality":   "quality_uhd",
		"fallbacks": []any{"QUALITY_HD", 0.0},
		"primary":   map[string]any{"url": "https://a", "bitrate": "-3"},
		"alternates": []any{
			map[string]any{"url": "https://b"},
			map[string]any{},
		},
	}
	got := f.encode(t, "media.Video", in)
	require.Equal(t, want, got)

	decoded := f.decode(t, "media.Video", got)
	wantDecoded := map[string]any{
		"video_id":  "abc",
		"quality":   "QUALITY_UHD",
		"fallbacks": []any{"QUALITY_HD", "QUALITY_UNSPECIFIED"},
		"primary":   map[string]any{"url": "https://a", "bitrate": "-3"},
		"alternates": []any{
			map[string]any{"url": "https://b"},
			map[string]any{},
		},
	}
	if diff := cmp.Diff(wantDecoded, decoded); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestImportedMessageFieldsMatchReference(t *testing.T) {
	fds, files := parsertest.Compile(t, map[string]string{
		"schedule.proto": `syntax = "proto3"; package schedule;
import "google/protobuf/timestamp.proto";
message Slot { google.protobuf.Timestamp at = 1; int32 n = 2; }`,
	})
	c, err := New(files, Options{DecodeCase: ir.CaseSnake})
	require.NoError(t, err)

	slot := parsertest.Message(t, fds, "schedule.Slot")
	at := slot.Fields().ByName("at")
	ref := dynamicpb.NewMessage(slot)
	ts := dynamicpb.NewMessage(at.Message())
	ts.Set(at.Message().Fields().ByName("seconds"), protoreflect.ValueOfInt64(1700000000))
	ts.Set(at.Message().Fields().ByName("nanos"), protoreflect.ValueOfInt32(5))
	ref.Set(at, protoreflect.ValueOfMessage(ts))
	ref.Set(slot.Fields().ByName("n"), protoreflect.ValueOfInt32(3))
	want := marshal(t, ref)

	in := map[string]any{"at": map[string]any{"seconds": "1700000000", "nanos": 5.0}, "n": 3.0}
	got, err := c.EncodeBytes("schedule.Slot", in)
	require.NoError(t, err)
	require.Equal(t, want, got)

	decoded, err := c.DecodeBytes("schedule.Slot", got)
	require.NoError(t, err)
	require.Equal(t, in, decoded)
}

func TestEncodeKeyPriority(t *testing.T) {
	f := newMediaFixture(t, Options{DecodeCase: ir.CaseSnake})
	byName := f.encode(t, "media.Video", map[string]any{"video_id": "a", "vid": "b", "videoId": "c"})
	require.Equal(t, map[string]any{"video_id": "a"}, f.decode(t, "media.Video", byName))

	byJSON := f.encode(t, "media.Video", map[string]any{"vid": "b", "videoId": "c"})
	require.Equal(t, map[string]any{"video_id": "b"}, f.decode(t, "media.Video", byJSON))

	byCamel := f.encode(t, "media.Video", map[string]any{"videoId": "c"})
	require.Equal(t, map[string]any{"video_id": "c"}, f.decode(t, "media.Video", byCamel))
}

func TestDecodeCaseStyles(t *testing.T) {
	b := []byte{0x0a, 0x01, 'x'}
	tests := map[ir.CaseStyle]map[string]any{
		ir.CaseSnake: {"video_id": "x"},
		ir.CaseCamel: {"videoId": "x"},
		ir.CaseBoth:  {"video_id": "x", "videoId": "x"},
	}
	for style, want := range tests {
		f := newMediaFixture(t, Options{DecodeCase: style})
		require.Equal(t, want, f.decode(t, "media.Video", b), style.String())
	}
}

func TestFileDecodeCaseOverride(t *testing.T) {
	_, files := parsertest.Compile(t, map[string]string{"x.proto": `
syntax = "proto3";
import "brsproto/options.proto";
option (brsproto.decode_case) = "camel";
message X { int32 some_value = 1; }
`})
	c, err := New(files, Options{DecodeCase: ir.CaseSnake})
	require.NoError(t, err)
	got, err := c.DecodeBytes("X", []byte{0x08, 0x05})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"someValue": 5.0}, got)
}

func TestEnumFallback(t *testing.T) {
	f := newMediaFixture(t, Options{DecodeCase: ir.CaseSnake})

	// An unknown number decodes as the zero value's name.
	require.Equal(t, map[string]any{"quality": "QUALITY_UNSPECIFIED"}, f.decode(t, "media.Video", []byte{0x10, 0x07}))
	// Without a zero value the raw number is kept.
	require.Equal(t, map[string]any{"mode": 7.0}, f.decode(t, "legacy.Settings", []byte{0x08, 0x07}))
	require.Equal(t, map[string]any{"mode": "MODE_B"}, f.decode(t, "legacy.Settings", []byte{0x08, 0x02}))

	// Unknown labels encode as zero, which proto3 omits.
	require.Empty(t, f.encode(t, "media.Video", map[string]any{"quality": "QUALITY_8K"}))
	require.Equal(t, []byte{0x10, 0x01}, f.encode(t, "media.Video", map[string]any{"quality": " quality_hd "}))
	// Negative enum numbers are sign-extended.
	require.Len(t, f.encode(t, "media.Video", map[string]any{"quality": -1.0}), 11)
}

func TestExplicitPresence(t *testing.T) {
	f := newMediaFixture(t, Options{DecodeCase: ir.CaseSnake})
	require.Equal(t, []byte{0x30, 0x00}, f.encode(t, "media.Video", map[string]any{"rating": 0.0}))
	require.Empty(t, f.encode(t, "media.Video", map[string]any{}))
	require.Equal(t, []byte{0x20, 0x00}, f.encode(t, "legacy.Settings", map[string]any{"enabled": false}))
	// Nested messages are written even when empty.
	require.Equal(t, []byte{0x22, 0x00}, f.encode(t, "media.Video", map[string]any{"primary": map[string]any{}}))
}

func TestUnknownFieldsArePreserved(t *testing.T) {
	f := newMediaFixture(t, Options{DecodeCase: ir.CaseSnake})
	original := f.encode(t, "media.Video", map[string]any{
		"video_id":   "abc",
		"quality":    1.0,
		"primary":    map[string]any{"url": "u"},
		"rating":     -2.0,
		"alternates": []any{map[string]any{"bitrate": "9"}},
	})
	original = protowire.AppendTag(original, 90, protowire.Fixed32Type)
	original = protowire.AppendFixed32(original, 7)
	original = protowire.AppendTag(original, 91, protowire.Fixed64Type)
	original = protowire.AppendFixed64(original, 8)

	v1 := f.decode(t, "media.VideoV1", original)
	require.Equal(t, "abc", v1["video_id"])
	require.Contains(t, v1, UnknownKey)

	require.Equal(t, original, f.encode(t, "media.VideoV1", v1))
	// The full schema still reads everything back.
	v2 := f.decode(t, "media.Video", f.encode(t, "media.VideoV1", v1))
	require.Equal(t, "QUALITY_HD", v2["quality"])
	require.Equal(t, -2.0, v2["rating"])
}

func TestMalformedInput(t *testing.T) {
	f := newMediaFixture(t, Options{DecodeCase: ir.CaseSnake})
	tests := []struct {
		name string
		in   []byte
		want map[string]any
	}{
		{"empty", nil, map[string]any{}},
		{"truncated tag", []byte{0x80}, map[string]any{}},
		{"truncated string", []byte{0x10, 0x01, 0x0a, 0x05, 'a'}, map[string]any{"quality": "QUALITY_HD"}},
		{"truncated varint", []byte{0x0a, 0x01, 'a', 0x10, 0xff}, map[string]any{"video_id": "a"}},
		{"group wire type", []byte{0x0a, 0x01, 'a', 0x0b, 0x10, 0x01}, map[string]any{"video_id": "a"}},
		{"invalid wire type", []byte{0x0f, 0x00}, map[string]any{}},
		{"huge length", []byte{0x0a, 0xff, 0xff, 0xff, 0xff, 0x0f, 'a'}, map[string]any{}},
		{"truncated fixed", []byte{0x0a, 0x01, 'a', 0x1d, 0x01}, map[string]any{"video_id": "a"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, f.decode(t, "media.Video", tc.in))
		})
	}

	decoded, err := f.codec.Decode("media.Video", "not base64!")
	require.NoError(t, err)
	require.Empty(t, decoded)

	_, err = f.codec.Decode("media.Missing", "")
	require.Error(t, err)
	_, err = f.codec.Encode("media.Missing", nil)
	require.Error(t, err)
}

func TestWrongWireTypeIsUnknown(t *testing.T) {
	f := newMediaFixture(t, Options{DecodeCase: ir.CaseSnake})
	// video_id sent as a varint.
	in := []byte{0x08, 0x05, 0x10, 0x01}
	decoded := f.decode(t, "media.Video", in)
	require.Equal(t, "QUALITY_HD", decoded["quality"])
	require.NotContains(t, decoded, "video_id")
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x08, 0x05}), decoded[UnknownKey])
}

func TestEmitDefaults(t *testing.T) {
	f := newMediaFixture(t, Options{DecodeCase: ir.CaseSnake, EmitDefaults: true})
	require.Equal(t, map[string]any{
		"video_id": "",
		"quality":  "QUALITY_UNSPECIFIED",
		"rating":   0.0,
	}, f.decode(t, "media.Video", nil))

	require.Equal(t, map[string]any{
		"mode":    "MODE_A",
		"level":   -7.0,
		"label":   "none",
		"enabled": false,
		"blob":    "YWI=",
	}, f.decode(t, "legacy.Settings", nil))

	got := f.decode(t, "legacy.Settings", []byte{0x10, 0x03})
	require.Equal(t, 3.0, got["level"])
}

func TestIdempotence(t *testing.T) {
	f := newFixture(t, "proto3", Options{})
	msg := map[string]any{}
	for _, typ := range scalarTypes {
		samples := samplesFor(typ)
		msg[typ+"_value"] = samples[len(samples)-1].in
		var list []any
		for _, s := range samples {
			list = append(list, s.in)
		}
		msg[typ+"_list"] = list
		msg[typ+"_unpacked"] = list
	}
	once := f.decode(t, f.encode(t, msg))
	twice := f.decode(t, f.encode(t, once))
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("not idempotent (-once +twice):\n%s", diff)
	}
}

func TestResolveField(t *testing.T) {
	msg := map[string]any{"a": nil, "b": 2.0, "c": 3.0}
	v, ok := ResolveField([]string{"a", "b", "c"}, msg)
	require.True(t, ok)
	require.Equal(t, 2.0, v)
	_, ok = ResolveField([]string{"x"}, msg)
	require.False(t, ok)
}
