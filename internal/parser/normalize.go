package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jptrs93/brsproto/internal/ir"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"google.golang.org/protobuf/reflect/protoreflect"
)

type normalizer struct {
	logger log.Logger
	// owners maps a message identifier to the full name that claimed it.
	owners map[string]string
}

func (n *normalizer) file(file protoreflect.FileDescriptor) (ir.File, error) {
	out := ir.File{
		Path:       file.Path(),
		Package:    string(file.Package()),
		Syntax:     syntaxOf(file),
		DecodeCase: decodeCaseFromOptions(file),
	}
	if out.DecodeCase != "" {
		if _, err := ir.ParseCaseStyle(out.DecodeCase); err != nil {
			return ir.File{}, fmt.Errorf("%s: brsproto.decode_case: %w", file.Path(), err)
		}
	}
	out.Enums = collectEnums(file.Enums())
	out.Messages = n.collectMessages(file.Messages(), nil, out.Syntax)
	for i := 0; i < file.Messages().Len(); i++ {
		out.Enums = append(out.Enums, nestedEnums(file.Messages().Get(i))...)
	}
	return out, nil
}

func syntaxOf(file protoreflect.FileDescriptor) ir.Syntax {
	switch file.Syntax() {
	case protoreflect.Proto2:
		return ir.SyntaxProto2
	case protoreflect.Editions:
		return ir.SyntaxEditions
	default:
		return ir.SyntaxProto3
	}
}

func collectEnums(enums protoreflect.EnumDescriptors) []ir.Enum {
	var out []ir.Enum
	for i := 0; i < enums.Len(); i++ {
		out = append(out, *enumInfo(enums.Get(i)))
	}
	return out
}

func nestedEnums(msg protoreflect.MessageDescriptor) []ir.Enum {
	out := collectEnums(msg.Enums())
	for i := 0; i < msg.Messages().Len(); i++ {
		out = append(out, nestedEnums(msg.Messages().Get(i))...)
	}
	return out
}

func enumInfo(e protoreflect.EnumDescriptor) *ir.Enum {
	info := &ir.Enum{
		Name:     string(e.Name()),
		FullName: string(e.FullName()),
	}
	values := e.Values()
	for i := 0; i < values.Len(); i++ {
		v := values.Get(i)
		info.Values = append(info.Values, ir.EnumValue{Name: string(v.Name()), Number: int32(v.Number())})
	}
	return info
}

func (n *normalizer) collectMessages(messages protoreflect.MessageDescriptors, prefix []string, syntax ir.Syntax) []ir.Message {
	var result []ir.Message
	for i := 0; i < messages.Len(); i++ {
		msg := messages.Get(i)
		if msg.IsMapEntry() {
			continue
		}
		nameParts := append(append([]string(nil), prefix...), string(msg.Name()))
		result = append(result, ir.Message{
			Name:     ir.Identifier(nameParts),
			FullName: string(msg.FullName()),
			Fields:   n.collectFields(msg, syntax),
		})
		result = append(result, n.collectMessages(msg.Messages(), nameParts, syntax)...)
	}
	return result
}

func (n *normalizer) collectFields(msg protoreflect.MessageDescriptor, syntax ir.Syntax) []ir.Field {
	var result []ir.Field
	fields := msg.Fields()
	for i := 0; i < fields.Len(); i++ {
		field := fields.Get(i)
		if field.IsMap() {
			n.drop(field, "map fields are not supported")
			continue
		}
		kind, ok := kindFromField(field)
		if !ok {
			n.drop(field, "unsupported kind "+field.Kind().String())
			continue
		}
		irField := ir.Field{
			Name:       string(field.Name()),
			JSONName:   field.JSONName(),
			Number:     int(field.Number()),
			Kind:       kind,
			IsRepeated: field.IsList(),
			IsOptional: field.HasPresence() && !field.IsList() && kind != ir.KindMessage,
			IsPacked:   isPacked(field, kind, syntax),
			Alias:      keyFromFieldOptions(field),
		}
		switch kind {
		case ir.KindMessage:
			irField.MessageFullName = string(field.Message().FullName())
		case ir.KindEnum:
			irField.Enum = enumInfo(field.Enum())
		}
		irField.Default, irField.HasDefault = defaultLiteral(field)
		result = append(result, irField)
	}
	return result
}

// isPacked applies the explicit packed option first, then the syntax
// default: packed for proto3 packable fields, unpacked for proto2. Editions
// files resolve features through the descriptor.
func isPacked(field protoreflect.FieldDescriptor, kind ir.Kind, syntax ir.Syntax) bool {
	if !field.IsList() || !kind.Packable() {
		return false
	}
	if packed, ok := explicitPacked(field); ok {
		return packed
	}
	switch syntax {
	case ir.SyntaxProto3:
		return true
	case ir.SyntaxEditions:
		return field.IsPacked()
	default:
		return false
	}
}

func defaultLiteral(field protoreflect.FieldDescriptor) (string, bool) {
	if !field.HasDefault() {
		return "", false
	}
	v := field.Default()
	switch field.Kind() {
	case protoreflect.EnumKind:
		if ev := field.DefaultEnumValue(); ev != nil {
			return string(ev.Name()), true
		}
		return "", false
	case protoreflect.BytesKind:
		return string(v.Bytes()), true
	case protoreflect.StringKind:
		return v.String(), true
	case protoreflect.BoolKind:
		return strconv.FormatBool(v.Bool()), true
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		f := v.Float()
		switch {
		case math.IsInf(f, 1):
			return "inf", true
		case math.IsInf(f, -1):
			return "-inf", true
		case math.IsNaN(f):
			return "nan", true
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true
	case protoreflect.Int32Kind, protoreflect.Int64Kind, protoreflect.Sint32Kind,
		protoreflect.Sint64Kind, protoreflect.Sfixed32Kind, protoreflect.Sfixed64Kind:
		return strconv.FormatInt(v.Int(), 10), true
	default:
		return strconv.FormatUint(v.Uint(), 10), true
	}
}

func (n *normalizer) drop(field protoreflect.FieldDescriptor, reason string) {
	level.Debug(n.logger).Log("msg", "dropping field", "field", field.FullName(), "reason", reason)
}

// prune drops fields referencing messages that are not generated and then
// messages without fields, until nothing changes.
func (n *normalizer) prune(files []ir.File) {
	for changed := true; changed; {
		changed = false
		generated := make(map[string]bool)
		for _, f := range files {
			for _, m := range f.Messages {
				generated[m.FullName] = true
			}
		}
		for fi := range files {
			var kept []ir.Message
			for _, m := range files[fi].Messages {
				var fields []ir.Field
				for _, field := range m.Fields {
					if field.Kind == ir.KindMessage && !generated[field.MessageFullName] {
						level.Debug(n.logger).Log("msg", "dropping field", "field", m.FullName+"."+field.Name,
							"reason", "message type "+field.MessageFullName+" is not generated")
						changed = true
						continue
					}
					fields = append(fields, field)
				}
				m.Fields = fields
				if len(fields) == 0 {
					level.Debug(n.logger).Log("msg", "dropping message", "message", m.FullName, "reason", "no supported fields")
					changed = true
					continue
				}
				kept = append(kept, m)
			}
			files[fi].Messages = kept
		}
	}
}

// checkIdentifiers rejects messages whose generated function names collide.
// BrightScript identifiers are case-insensitive.
func (n *normalizer) checkIdentifiers(files []ir.File) error {
	for _, f := range files {
		for _, m := range f.Messages {
			key := strings.ToLower(m.Name)
			if prev, ok := n.owners[key]; ok && prev != m.FullName {
				return fmt.Errorf("%s: message %s and %s both generate %sEncode", f.Path, prev, m.FullName, m.Name)
			}
			n.owners[key] = m.FullName
		}
	}
	return nil
}

func kindFromField(field protoreflect.FieldDescriptor) (ir.Kind, bool) {
	switch field.Kind() {
	case protoreflect.BoolKind:
		return ir.KindBool, true
	case protoreflect.Int32Kind:
		return ir.KindInt32, true
	case protoreflect.Int64Kind:
		return ir.KindInt64, true
	case protoreflect.Uint32Kind:
		return ir.KindUint32, true
	case protoreflect.Uint64Kind:
		return ir.KindUint64, true
	case protoreflect.Sint32Kind:
		return ir.KindSint32, true
	case protoreflect.Sint64Kind:
		return ir.KindSint64, true
	case protoreflect.Fixed32Kind:
		return ir.KindFixed32, true
	case protoreflect.Fixed64Kind:
		return ir.KindFixed64, true
	case protoreflect.Sfixed32Kind:
		return ir.KindSfixed32, true
	case protoreflect.Sfixed64Kind:
		return ir.KindSfixed64, true
	case protoreflect.FloatKind:
		return ir.KindFloat, true
	case protoreflect.DoubleKind:
		return ir.KindDouble, true
	case protoreflect.StringKind:
		return ir.KindString, true
	case protoreflect.BytesKind:
		return ir.KindBytes, true
	case protoreflect.MessageKind:
		return ir.KindMessage, true
	case protoreflect.EnumKind:
		return ir.KindEnum, true
	default:
		return 0, false
	}
}
