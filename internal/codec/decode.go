package codec

import (
	"encoding/base64"
	"math"

	"github.com/jptrs93/brsproto/internal/decimal"
	"github.com/jptrs93/brsproto/internal/ieee754"
	"github.com/jptrs93/brsproto/internal/ir"

	"google.golang.org/protobuf/encoding/protowire"
)

func (c *Codec) decodeMessage(m ir.Message, b []byte) map[string]any {
	style := c.styles[m.FullName]
	out := make(map[string]any)
	if c.options.EmitDefaults {
		for _, field := range m.Fields {
			if field.IsRepeated || field.Class() == ir.ClassMessage {
				continue
			}
			assign(out, ir.DecodeKeys(field, style), DefaultValue(field))
		}
	}

	byNumber := make(map[float64]ir.Field, len(m.Fields))
	for _, field := range m.Fields {
		byNumber[float64(field.Number)] = field
	}
	lists := make(map[int][]any)
	var unknown []byte

	cursor := 0
	for cursor < len(b) {
		start := cursor
		tag, n := decimal.ConsumeSmallVarint(b[cursor:])
		if n < 0 {
			break
		}
		cursor += n
		fieldNumber := math.Trunc(tag / 8)
		wireType := protowire.Type(tag - fieldNumber*8)

		handled := false
		if field, ok := byNumber[fieldNumber]; ok && fieldNumber > 0 {
			switch {
			case wireType == field.WireType():
				v, n := c.element(b[cursor:], field)
				if n < 0 {
					cursor = len(b) + 1
					break
				}
				cursor += n
				handled = true
				if field.IsRepeated {
					lists[field.Number] = append(lists[field.Number], v)
				} else {
					assign(out, ir.DecodeKeys(field, style), v)
				}
			case wireType == protowire.BytesType && field.AcceptsPacked():
				length, n := decimal.ConsumeSmallVarint(b[cursor:])
				if n < 0 || length > float64(len(b)-cursor-n) {
					cursor = len(b) + 1
					break
				}
				cursor += n
				end := cursor + int(length)
				for cursor < end {
					v, n := c.element(b[cursor:end], field)
					if n < 0 {
						break
					}
					cursor += n
					lists[field.Number] = append(lists[field.Number], v)
				}
				cursor = end
				handled = true
			}
		}
		if cursor > len(b) {
			break
		}
		if !handled {
			next := skipField(b, cursor, wireType)
			if next < 0 {
				break
			}
			cursor = next
			unknown = append(unknown, b[start:cursor]...)
		}
		if cursor <= start {
			break
		}
	}

	for _, field := range m.Fields {
		if items, ok := lists[field.Number]; ok {
			assign(out, ir.DecodeKeys(field, style), items)
		}
	}
	if len(unknown) > 0 {
		out[UnknownKey] = base64.StdEncoding.EncodeToString(unknown)
	}
	return out
}

func assign(out map[string]any, keys []string, v any) {
	for _, key := range keys {
		out[key] = v
	}
}

// element decodes one value of the field's own wire type. n is negative
// when the input is truncated.
func (c *Codec) element(b []byte, field ir.Field) (v any, n int) {
	switch field.WireType() {
	case protowire.VarintType:
		raw, n := decimal.ConsumeVarint(b)
		if n < 0 {
			return nil, n
		}
		return c.varintValue(field, raw), n
	case protowire.Fixed32Type:
		if len(b) < 4 {
			return nil, -1
		}
		bits := decimal.Fixed32(b[:4])
		switch field.Kind {
		case ir.KindSfixed32:
			return decimal.ToSigned32(bits), 4
		case ir.KindFloat:
			return ieee754.Float32FromBits(bits), 4
		default:
			return bits, 4
		}
	case protowire.Fixed64Type:
		if len(b) < 8 {
			return nil, -1
		}
		switch field.Kind {
		case ir.KindSfixed64:
			return decimal.ToSignedInt64String(decimal.Fixed64(b[:8])), 8
		case ir.KindDouble:
			return ieee754.Float64(b[:8]), 8
		default:
			return decimal.Fixed64(b[:8]), 8
		}
	case protowire.BytesType:
		length, n := decimal.ConsumeSmallVarint(b)
		if n < 0 || length > float64(len(b)-n) {
			return nil, -1
		}
		payload := b[n : n+int(length)]
		total := n + int(length)
		switch field.Kind {
		case ir.KindString:
			return string(payload), total
		case ir.KindBytes:
			return base64.StdEncoding.EncodeToString(payload), total
		default:
			m, ok := c.messages[field.MessageFullName]
			if !ok {
				return map[string]any{}, total
			}
			return c.decodeMessage(m, payload), total
		}
	}
	return nil, -1
}

func (c *Codec) varintValue(field ir.Field, raw string) any {
	switch field.Kind {
	case ir.KindBool:
		return raw != "0"
	case ir.KindInt32:
		return decimal.ToSigned32FromString(raw)
	case ir.KindUint32:
		return decimal.Low32(raw)
	case ir.KindSint32:
		return decimal.DecodeZigZag32(raw)
	case ir.KindInt64:
		return decimal.ToSignedInt64String(raw)
	case ir.KindSint64:
		return decimal.DecodeZigZag64(raw)
	case ir.KindEnum:
		return enumLabel(field.Enum, decimal.ToSigned32FromString(raw))
	default:
		return raw
	}
}

// skipField returns the offset just past a field payload that starts at
// cursor, or -1 when it cannot be skipped.
func skipField(b []byte, cursor int, wireType protowire.Type) int {
	switch wireType {
	case protowire.VarintType:
		for i := cursor; i < len(b) && i < cursor+10; i++ {
			if b[i]&0x80 == 0 {
				return i + 1
			}
		}
		return -1
	case protowire.Fixed64Type:
		if cursor+8 > len(b) {
			return -1
		}
		return cursor + 8
	case protowire.BytesType:
		length, n := decimal.ConsumeSmallVarint(b[cursor:])
		if n < 0 || length > float64(len(b)-cursor-n) {
			return -1
		}
		return cursor + n + int(length)
	case protowire.Fixed32Type:
		if cursor+4 > len(b) {
			return -1
		}
		return cursor + 4
	default:
		return -1
	}
}
