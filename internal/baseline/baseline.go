// Package baseline builds reference fixtures for the generated BrightScript:
// for every single-field scalar message it encodes boundary samples with
// protobuf-go and records the bytes together with the decoded form.
package baseline

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

type Document struct {
	GeneratedAt string   `json:"generatedAt"`
	Files       []string `json:"files"`
	Cases       []Case   `json:"cases"`
}

type Case struct {
	Type               string         `json:"type"`
	ProtoType          string         `json:"protoType"`
	Field              string         `json:"field"`
	FieldID            int            `json:"fieldId"`
	Value              any            `json:"value"`
	ValueType          string         `json:"valueType"`
	SampleLabel        string         `json:"sampleLabel"`
	EncodedBase64      string         `json:"encodedBase64"`
	Decoded            map[string]any `json:"decoded"`
	AlternateEncodings []string       `json:"alternateEncodings,omitempty"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Build encodes every sample of every fixture message in files. names are
// the proto inputs recorded in the document.
func Build(files []protoreflect.FileDescriptor, names []string, now time.Time) (Document, error) {
	doc := Document{
		GeneratedAt: now.UTC().Format(time.RFC3339Nano),
		Files:       names,
		Cases:       []Case{},
	}
	for _, md := range fixtureMessages(files) {
		field := md.Fields().Get(0)
		for _, sample := range Samples(field) {
			c, err := buildCase(md, field, sample)
			if err != nil {
				return doc, fmt.Errorf("%s.%s (%s): %w", md.FullName(), field.Name(), sample.Label, err)
			}
			doc.Cases = append(doc.Cases, c)
		}
	}
	return doc, nil
}

// fixtureMessages returns messages, nested ones included, that hold exactly
// one non-map scalar or enum field.
func fixtureMessages(files []protoreflect.FileDescriptor) []protoreflect.MessageDescriptor {
	var out []protoreflect.MessageDescriptor
	var walk func(protoreflect.MessageDescriptors)
	walk = func(msgs protoreflect.MessageDescriptors) {
		for i := 0; i < msgs.Len(); i++ {
			md := msgs.Get(i)
			if md.IsMapEntry() {
				continue
			}
			if md.Fields().Len() == 1 {
				f := md.Fields().Get(0)
				if !f.IsMap() && f.Kind() != protoreflect.MessageKind && f.Kind() != protoreflect.GroupKind {
					out = append(out, md)
				}
			}
			walk(md.Messages())
		}
	}
	for _, fd := range files {
		walk(fd.Messages())
	}
	return out
}

func buildCase(md protoreflect.MessageDescriptor, field protoreflect.FieldDescriptor, sample Sample) (Case, error) {
	msg := dynamicpb.NewMessage(md)
	var elements []protoreflect.Value
	if field.IsList() {
		items, _ := sample.Value.([]any)
		list := msg.Mutable(field).List()
		for _, item := range items {
			v, err := toValue(field, item)
			if err != nil {
				return Case{}, err
			}
			list.Append(v)
			elements = append(elements, v)
		}
	} else {
		v, err := toValue(field, sample.Value)
		if err != nil {
			return Case{}, err
		}
		msg.Set(field, v)
	}

	encoded, err := proto.MarshalOptions{Deterministic: true}.Marshal(msg)
	if err != nil {
		return Case{}, fmt.Errorf("marshal: %w", err)
	}
	decoded, err := decode(md, encoded)
	if err != nil {
		return Case{}, err
	}
	c := Case{
		Type:          string(md.Name()),
		ProtoType:     string(md.FullName()),
		Field:         string(field.Name()),
		FieldID:       int(field.Number()),
		Value:         sample.Value,
		ValueType:     valueType(field),
		SampleLabel:   sample.Label,
		EncodedBase64: base64.StdEncoding.EncodeToString(encoded),
		Decoded:       decoded,
	}
	if alt := alternateEncoding(field, elements); alt != nil {
		c.AlternateEncodings = []string{base64.StdEncoding.EncodeToString(alt)}
	}
	return c, nil
}

// decode parses encoded back and renders it the way protojson does with
// original field names and zero values included.
func decode(md protoreflect.MessageDescriptor, encoded []byte) (map[string]any, error) {
	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(encoded, msg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	raw, err := protojson.MarshalOptions{UseProtoNames: true, EmitUnpopulated: true}.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("render decoded: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("render decoded: %w", err)
	}
	return out, nil
}

func valueType(field protoreflect.FieldDescriptor) string {
	if field.Kind() == protoreflect.EnumKind {
		return "enum"
	}
	return field.Kind().String()
}

func toValue(field protoreflect.FieldDescriptor, v any) (protoreflect.Value, error) {
	switch field.Kind() {
	case protoreflect.BoolKind:
		b, _ := v.(bool)
		return protoreflect.ValueOfBool(b), nil
	case protoreflect.StringKind:
		s, _ := v.(string)
		return protoreflect.ValueOfString(s), nil
	case protoreflect.BytesKind:
		s, _ := v.(string)
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfBytes(b), nil
	case protoreflect.EnumKind:
		s, _ := v.(string)
		ev := field.Enum().Values().ByName(protoreflect.Name(s))
		if ev == nil {
			return protoreflect.Value{}, fmt.Errorf("unknown enum value %q", s)
		}
		return protoreflect.ValueOfEnum(ev.Number()), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		f, _ := v.(float64)
		return protoreflect.ValueOfInt32(int32(f)), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		f, _ := v.(float64)
		return protoreflect.ValueOfUint32(uint32(f)), nil
	case protoreflect.FloatKind:
		f, _ := v.(float64)
		return protoreflect.ValueOfFloat32(float32(f)), nil
	case protoreflect.DoubleKind:
		f, _ := v.(float64)
		return protoreflect.ValueOfFloat64(f), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		s, _ := v.(string)
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfInt64(n), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		s, _ := v.(string)
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfUint64(n), nil
	}
	return protoreflect.Value{}, fmt.Errorf("unsupported kind %s", field.Kind())
}

// alternateEncoding is the other legal wire form of a repeated packable
// field: per-element tags when protobuf-go packed it, one length-delimited
// blob otherwise.
func alternateEncoding(field protoreflect.FieldDescriptor, elements []protoreflect.Value) []byte {
	if !field.IsList() || !isPackable(field.Kind()) || len(elements) == 0 {
		return nil
	}
	if field.IsPacked() {
		var b []byte
		for _, v := range elements {
			b = protowire.AppendTag(b, field.Number(), wireType(field.Kind()))
			b = appendElement(b, field.Kind(), v)
		}
		return b
	}
	var payload []byte
	for _, v := range elements {
		payload = appendElement(payload, field.Kind(), v)
	}
	b := protowire.AppendTag(nil, field.Number(), protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func wireType(kind protoreflect.Kind) protowire.Type {
	switch kind {
	case protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind:
		return protowire.Fixed32Type
	case protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind:
		return protowire.Fixed64Type
	}
	return protowire.VarintType
}

func appendElement(b []byte, kind protoreflect.Kind, v protoreflect.Value) []byte {
	switch kind {
	case protoreflect.BoolKind:
		return protowire.AppendVarint(b, protowire.EncodeBool(v.Bool()))
	case protoreflect.EnumKind:
		return protowire.AppendVarint(b, uint64(int64(v.Enum())))
	case protoreflect.Int32Kind, protoreflect.Int64Kind:
		return protowire.AppendVarint(b, uint64(v.Int()))
	case protoreflect.Uint32Kind, protoreflect.Uint64Kind:
		return protowire.AppendVarint(b, v.Uint())
	case protoreflect.Sint32Kind, protoreflect.Sint64Kind:
		return protowire.AppendVarint(b, protowire.EncodeZigZag(v.Int()))
	case protoreflect.Fixed32Kind:
		return protowire.AppendFixed32(b, uint32(v.Uint()))
	case protoreflect.Sfixed32Kind:
		return protowire.AppendFixed32(b, uint32(int32(v.Int())))
	case protoreflect.FloatKind:
		return protowire.AppendFixed32(b, math.Float32bits(float32(v.Float())))
	case protoreflect.Fixed64Kind:
		return protowire.AppendFixed64(b, v.Uint())
	case protoreflect.Sfixed64Kind:
		return protowire.AppendFixed64(b, uint64(v.Int()))
	case protoreflect.DoubleKind:
		return protowire.AppendFixed64(b, math.Float64bits(v.Float()))
	}
	return b
}
