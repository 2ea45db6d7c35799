package codec

import (
	"github.com/jptrs93/brsproto/internal/decimal"
	"github.com/jptrs93/brsproto/internal/ieee754"
	"github.com/jptrs93/brsproto/internal/ir"

	"google.golang.org/protobuf/encoding/protowire"
)

func (c *Codec) encodeMessage(dst []byte, m ir.Message, msg map[string]any) []byte {
	for _, field := range m.Fields {
		v, ok := ResolveField(ir.EncodeKeys(field), msg)
		if !ok {
			continue
		}
		if field.IsRepeated {
			dst = c.encodeRepeated(dst, field, v)
			continue
		}
		payload, ok := c.payload(nil, field, v)
		if !ok {
			continue
		}
		if field.ImplicitPresence() && isZeroPayload(field, payload) {
			continue
		}
		dst = appendTag(dst, field.Tag())
		dst = append(dst, payload...)
	}
	if unknown, ok := msg[UnknownKey]; ok {
		dst = append(dst, toBytes(unknown)...)
	}
	return dst
}

func (c *Codec) encodeRepeated(dst []byte, field ir.Field, v any) []byte {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return dst
	}
	if field.Packed() {
		var scratch []byte
		for _, item := range items {
			scratch, _ = c.payload(scratch, field, item)
		}
		dst = appendTag(dst, field.WireTag())
		dst = decimal.AppendVarint(dst, decimal.FromFloat(float64(len(scratch))))
		return append(dst, scratch...)
	}
	for _, item := range items {
		payload, ok := c.payload(nil, field, item)
		if !ok {
			continue
		}
		dst = appendTag(dst, field.Tag())
		dst = append(dst, payload...)
	}
	return dst
}

// payload appends the wire form of one value without its tag. It reports
// false for values that cannot be written, which only happens for nested
// messages given something other than a map.
func (c *Codec) payload(dst []byte, field ir.Field, v any) ([]byte, bool) {
	switch field.Kind {
	case ir.KindBool:
		if toBool(v) {
			return append(dst, 1), true
		}
		return append(dst, 0), true
	case ir.KindInt32:
		n := decimal.ToSigned32(decimal.Wrap32(toInteger(v)))
		return decimal.AppendSignedVarint(dst, decimal.FromSignedFloat(n)), true
	case ir.KindUint32:
		return decimal.AppendVarint(dst, decimal.FromFloat(decimal.Wrap32(toInteger(v)))), true
	case ir.KindSint32:
		n := decimal.ToSigned32(decimal.Wrap32(toInteger(v)))
		return decimal.AppendVarint(dst, decimal.FromFloat(decimal.EncodeZigZag32(n))), true
	case ir.KindInt64:
		return decimal.AppendSignedVarint(dst, toDecimal(v)), true
	case ir.KindUint64:
		return decimal.AppendVarint(dst, decimal.ToUnsigned64(toDecimal(v))), true
	case ir.KindSint64:
		return decimal.AppendVarint(dst, decimal.EncodeZigZag64(toDecimal(v))), true
	case ir.KindFixed32, ir.KindSfixed32:
		return decimal.AppendFixed32(dst, decimal.Wrap32(toInteger(v))), true
	case ir.KindFixed64, ir.KindSfixed64:
		return decimal.AppendFixed64(dst, decimal.ToUnsigned64(toDecimal(v))), true
	case ir.KindFloat:
		return ieee754.AppendFloat32(dst, toNumber(v)), true
	case ir.KindDouble:
		return ieee754.AppendFloat64(dst, toNumber(v)), true
	case ir.KindString:
		return appendDelimited(dst, []byte(toText(v))), true
	case ir.KindBytes:
		return appendDelimited(dst, toBytes(v)), true
	case ir.KindEnum:
		n := enumNumber(field.Enum, v)
		return decimal.AppendSignedVarint(dst, decimal.FromSignedFloat(n)), true
	case ir.KindMessage:
		child, ok := v.(map[string]any)
		if !ok {
			return dst, false
		}
		m, ok := c.messages[field.MessageFullName]
		if !ok {
			return dst, false
		}
		return appendDelimited(dst, c.encodeMessage(nil, m, child)), true
	}
	return dst, false
}

// isZeroPayload reports whether an encoded singular value is its type's zero
// value: an empty length-delimited payload or a run of zero bytes.
func isZeroPayload(field ir.Field, payload []byte) bool {
	if field.WireType() == protowire.BytesType {
		return len(payload) == 1 && payload[0] == 0
	}
	for _, b := range payload {
		if b != 0 {
			return false
		}
	}
	return true
}

func appendTag(dst []byte, tag uint64) []byte {
	return decimal.AppendVarint(dst, decimal.FromFloat(float64(tag)))
}

func appendDelimited(dst, b []byte) []byte {
	dst = decimal.AppendVarint(dst, decimal.FromFloat(float64(len(b))))
	return append(dst, b...)
}
