package brs

import (
	"fmt"
	"strings"

	"github.com/jptrs93/brsproto/internal/ir"

	"google.golang.org/protobuf/encoding/protowire"
)

// emitter renders the encode and decode fragments of one message's fields.
type emitter struct {
	msg   ir.Message
	style ir.CaseStyle
	// names maps message full names to generated identifiers.
	names map[string]string
}

// scalarForm describes how one kind is normalized, tested for its zero
// value and written. Formats take the input variable, the normalized
// variable and the target buffer respectively.
type scalarForm struct {
	normalize string
	nonZero   string
	write     string
}

// readForm is the runtime reader for one element and the conversion of its
// result into the decoded value.
type readForm struct {
	reader  string
	convert string
}

func (e *emitter) valuesFunc(field ir.Field) string {
	return e.msg.Name + "EnumValues_" + field.Name
}

func (e *emitter) namesFunc(field ir.Field) string {
	return e.msg.Name + "EnumNames_" + field.Name
}

func listVar(field ir.Field) string {
	return fmt.Sprintf("list%d", field.Number)
}

func (e *emitter) child(field ir.Field) (string, error) {
	name, ok := e.names[field.MessageFullName]
	if !ok {
		return "", fmt.Errorf("field %s: message %s is not generated", field.Name, field.MessageFullName)
	}
	return name, nil
}

func (e *emitter) scalar(field ir.Field) scalarForm {
	switch field.Kind {
	case ir.KindBool:
		return scalarForm{"__pb_toBool(%s)", "%s", "__pb_writeBool(%s, %s)"}
	case ir.KindInt32:
		return scalarForm{"__pb_toSigned32(__pb_wrap32(__pb_toInteger(%s)))", "%s <> 0", "__pb_writeVarint(%s, %s)"}
	case ir.KindUint32:
		return scalarForm{"__pb_wrap32(__pb_toInteger(%s))", "%s <> 0", "__pb_writeVarint64(%s, %s)"}
	case ir.KindSint32:
		return scalarForm{"__pb_encodeZigZag32(__pb_toSigned32(__pb_wrap32(__pb_toInteger(%s))))", "%s <> 0", "__pb_writeVarint64(%s, %s)"}
	case ir.KindInt64, ir.KindUint64:
		return scalarForm{"__pb_toUnsigned64(__pb_toDecimalString(%s))", `%s <> "0"`, "__pb_writeVarint64(%s, %s)"}
	case ir.KindSint64:
		return scalarForm{"__pb_encodeZigZag64(__pb_toDecimalString(%s))", `%s <> "0"`, "__pb_writeVarint64(%s, %s)"}
	case ir.KindFixed32, ir.KindSfixed32:
		return scalarForm{"__pb_wrap32(__pb_toInteger(%s))", "%s <> 0", "__pb_writeFixed32(%s, %s)"}
	case ir.KindFixed64, ir.KindSfixed64:
		return scalarForm{"__pb_toUnsigned64(__pb_toDecimalString(%s))", `%s <> "0"`, "__pb_writeFixed64(%s, %s)"}
	case ir.KindFloat:
		return scalarForm{"__pb_float32Bits(__pb_toNumber(%s))", "%s <> 0", "__pb_writeFixed32(%s, %s)"}
	case ir.KindDouble:
		return scalarForm{"__pb_float64Bits(__pb_toNumber(%s))", "%[1]s.lo <> 0 or %[1]s.hi <> 0", "__pb_writeFloat64Bits(%s, %s)"}
	case ir.KindString:
		return scalarForm{"__pb_textBytes(%s)", "%s.Count() > 0", "__pb_writeLengthDelimited(%s, %s)"}
	case ir.KindBytes:
		return scalarForm{"__pb_toBytes(%s)", "%s.Count() > 0", "__pb_writeLengthDelimited(%s, %s)"}
	case ir.KindEnum:
		return scalarForm{"__pb_enumNumber(%s, " + e.valuesFunc(field) + "())", "%s <> 0", "__pb_writeVarint(%s, %s)"}
	}
	panic(fmt.Sprintf("no scalar form for %s", field.Kind))
}

func (e *emitter) read(field ir.Field) (readForm, error) {
	switch field.Kind {
	case ir.KindBool:
		return readForm{"__pb_readVarint64", `%s <> "0"`}, nil
	case ir.KindInt32:
		return readForm{"__pb_readVarint64", "__pb_toSigned32FromString(%s)"}, nil
	case ir.KindUint32:
		return readForm{"__pb_readVarint64", "__pb_low32(%s)"}, nil
	case ir.KindSint32:
		return readForm{"__pb_readVarint64", "__pb_decodeZigZag32(%s)"}, nil
	case ir.KindInt64:
		return readForm{"__pb_readVarint64", "__pb_toSignedInt64String(%s)"}, nil
	case ir.KindUint64:
		return readForm{"__pb_readVarint64", "%s"}, nil
	case ir.KindSint64:
		return readForm{"__pb_readVarint64", "__pb_decodeZigZag64(%s)"}, nil
	case ir.KindEnum:
		return readForm{"__pb_readVarint64", "__pb_enumLabel(__pb_toSigned32FromString(%s), " + e.namesFunc(field) + "())"}, nil
	case ir.KindFixed32:
		return readForm{"__pb_readFixed32", "%s"}, nil
	case ir.KindSfixed32:
		return readForm{"__pb_readFixed32", "__pb_toSigned32(%s)"}, nil
	case ir.KindFloat:
		return readForm{"__pb_readFloat32", "%s"}, nil
	case ir.KindFixed64:
		return readForm{"__pb_readFixed64", "%s"}, nil
	case ir.KindSfixed64:
		return readForm{"__pb_readFixed64", "__pb_toSignedInt64String(%s)"}, nil
	case ir.KindDouble:
		return readForm{"__pb_readFloat64", "%s"}, nil
	case ir.KindString:
		return readForm{"__pb_readLengthDelimited", "%s.ToAsciiString()"}, nil
	case ir.KindBytes:
		return readForm{"__pb_readLengthDelimited", "%s.ToBase64String()"}, nil
	case ir.KindMessage:
		child, err := e.child(field)
		if err != nil {
			return readForm{}, err
		}
		return readForm{"__pb_readLengthDelimited", child + "Decode(%s.ToBase64String())"}, nil
	}
	return readForm{}, fmt.Errorf("field %s: unsupported kind %s", field.Name, field.Kind)
}

// encodeField writes the encode fragment: resolve the value under every
// accepted key, then emit tag and payload.
func (e *emitter) encodeField(b *strings.Builder, field ir.Field) error {
	fmt.Fprintf(b, "    ' %d: %s\n", field.Number, field.Name)
	fmt.Fprintf(b, "    value = __pb_resolveField(message, %s)\n", keyList(ir.EncodeKeys(field)))
	if field.Class() == ir.ClassMessage {
		child, err := e.child(field)
		if err != nil {
			return err
		}
		if field.IsRepeated {
			b.WriteString("    if __pb_isList(value) then\n")
			b.WriteString("        for each item in value\n")
			writeNested(b, "            ", "item", child, field.Tag())
			b.WriteString("        end for\n")
			b.WriteString("    end if\n")
			return nil
		}
		writeNested(b, "    ", "value", child, field.Tag())
		return nil
	}

	form := e.scalar(field)
	switch {
	case field.Packed():
		b.WriteString("    if __pb_isList(value) then\n")
		b.WriteString("        if value.Count() > 0 then\n")
		b.WriteString("            packed = __pb_createByteArray()\n")
		b.WriteString("            for each item in value\n")
		fmt.Fprintf(b, "                normalized = %s\n", fmt.Sprintf(form.normalize, "item"))
		fmt.Fprintf(b, "                %s\n", fmt.Sprintf(form.write, "packed", "normalized"))
		b.WriteString("            end for\n")
		fmt.Fprintf(b, "            __pb_writeVarint(bytes, %d)\n", field.WireTag())
		b.WriteString("            __pb_writeLengthDelimited(bytes, packed)\n")
		b.WriteString("        end if\n")
		b.WriteString("    end if\n")
	case field.IsRepeated:
		b.WriteString("    if __pb_isList(value) then\n")
		b.WriteString("        for each item in value\n")
		fmt.Fprintf(b, "            normalized = %s\n", fmt.Sprintf(form.normalize, "item"))
		fmt.Fprintf(b, "            __pb_writeVarint(bytes, %d)\n", field.Tag())
		fmt.Fprintf(b, "            %s\n", fmt.Sprintf(form.write, "bytes", "normalized"))
		b.WriteString("        end for\n")
		b.WriteString("    end if\n")
	default:
		b.WriteString("    if not __pb_isInvalid(value) then\n")
		fmt.Fprintf(b, "        normalized = %s\n", fmt.Sprintf(form.normalize, "value"))
		indent := "        "
		if field.ImplicitPresence() {
			fmt.Fprintf(b, "        if %s then\n", fmt.Sprintf(form.nonZero, "normalized"))
			indent = "            "
		}
		fmt.Fprintf(b, "%s__pb_writeVarint(bytes, %d)\n", indent, field.Tag())
		fmt.Fprintf(b, "%s%s\n", indent, fmt.Sprintf(form.write, "bytes", "normalized"))
		if field.ImplicitPresence() {
			b.WriteString("        end if\n")
		}
		b.WriteString("    end if\n")
	}
	return nil
}

// writeNested encodes a child message with its own Encode function and
// re-frames the result as a length-delimited payload. Values that are not
// associative arrays are skipped.
func writeNested(b *strings.Builder, indent, variable, child string, tag uint64) {
	fmt.Fprintf(b, "%sif __pb_isMessage(%s) then\n", indent, variable)
	fmt.Fprintf(b, "%s    __pb_writeVarint(bytes, %d)\n", indent, tag)
	fmt.Fprintf(b, "%s    __pb_writeLengthDelimited(bytes, __pb_fromBase64(%sEncode(%s)))\n", indent, child, variable)
	fmt.Fprintf(b, "%send if\n", indent)
}

// decodeField writes one arm of the field number dispatch. Wire types the
// field does not accept fall through to unknown field handling.
func (e *emitter) decodeField(b *strings.Builder, field ir.Field, first bool) error {
	form, err := e.read(field)
	if err != nil {
		return err
	}
	keyword := "else if"
	if first {
		keyword = "if"
	}
	fmt.Fprintf(b, "        %s fieldNumber = %d then\n", keyword, field.Number)
	fmt.Fprintf(b, "            if wireType = %d then\n", field.WireType())
	fmt.Fprintf(b, "                valueResult = %s(bytes, cursor)\n", form.reader)
	b.WriteString("                if valueResult.complete then\n")
	b.WriteString("                    cursor = valueResult.nextIndex\n")
	b.WriteString("                    handled = true\n")
	decoded := fmt.Sprintf(form.convert, "valueResult.value")
	if field.IsRepeated {
		fmt.Fprintf(b, "                    %s.Push(%s)\n", listVar(field), decoded)
	} else {
		fmt.Fprintf(b, "                    __pb_assign(message, %s, %s)\n", keyList(ir.DecodeKeys(field, e.style)), decoded)
	}
	b.WriteString("                else\n")
	b.WriteString("                    cursor = limit + 1\n")
	b.WriteString("                end if\n")
	if field.AcceptsPacked() {
		fmt.Fprintf(b, "            else if wireType = %d then\n", protowire.BytesType)
		b.WriteString("                lengthResult = __pb_readVarint(bytes, cursor)\n")
		b.WriteString("                if lengthResult.complete and lengthResult.value <= limit - lengthResult.nextIndex then\n")
		b.WriteString("                    cursor = lengthResult.nextIndex\n")
		b.WriteString("                    packedEnd = cursor + Int(lengthResult.value)\n")
		b.WriteString("                    while cursor < packedEnd\n")
		fmt.Fprintf(b, "                        valueResult = %s(bytes, cursor)\n", form.reader)
		b.WriteString("                        if not valueResult.complete or valueResult.nextIndex > packedEnd then exit while\n")
		b.WriteString("                        cursor = valueResult.nextIndex\n")
		fmt.Fprintf(b, "                        %s.Push(%s)\n", listVar(field), decoded)
		b.WriteString("                    end while\n")
		b.WriteString("                    cursor = packedEnd\n")
		b.WriteString("                    handled = true\n")
		b.WriteString("                else\n")
		b.WriteString("                    cursor = limit + 1\n")
		b.WriteString("                end if\n")
	}
	b.WriteString("            end if\n")
	return nil
}
